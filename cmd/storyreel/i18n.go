// Package main provides localization for the storyreel CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Portuguese translations for CLI messages.
	l10n.Register("pt", l10n.LexiconMap{
		// Flag categories
		"Logging": "Registro",

		// Root command
		"Turn a storyboard of images, clips and narration into a video":                                                                            "Transforma um roteiro de imagens, clipes e narração em vídeo",
		"storyreel manages a storyboard of scenes and a media gallery, generates images and narration, and renders the storyboard to WebM or MP4.": "storyreel gerencia um roteiro de cenas e uma galeria de mídia, gera imagens e narração e renderiza o roteiro em WebM ou MP4.",
		"YAML configuration file":                            "Arquivo de configuração YAML",
		"Studio database path (overrides the configuration)": "Caminho do banco do estúdio (substitui a configuração)",
		"File with GEMINI_API_KEY":                           "Arquivo com GEMINI_API_KEY",
		"Log level (debug, info, warn, error)":               "Nível de log (debug, info, warn, error)",
		"Suppress all log output":                            "Suprimir toda a saída de log",

		// Version command
		"Show version information": "Mostrar informações de versão",
		"storyreel version %s":     "storyreel versão %s",

		// Render command
		"Render the storyboard to a video file":           "Renderizar o roteiro em um arquivo de vídeo",
		"Output file or directory":                        "Arquivo ou diretório de saída",
		"Aspect ratio (16:9 or 9:16)":                     "Proporção (16:9 ou 9:16)",
		"Video codec (vp9 or h264)":                       "Codec de vídeo (vp9 ou h264)",
		"Frames per second":                               "Quadros por segundo",
		"Quality preset (low, medium, high)":              "Predefinição de qualidade (low, medium, high)",
		"Target bitrate in kbps (0 for constant quality)": "Taxa de bits alvo em kbps (0 para qualidade constante)",
		"Pace the render by the wall clock":               "Cadenciar a renderização pelo relógio real",
		"Narration longer than its scene: allow or cut":   "Narração mais longa que a cena: allow ou cut",
		"Do not add the render to the gallery":            "Não adicionar o vídeo à galeria",
		"Write a Markdown render summary to this file":    "Gravar um resumo em Markdown neste arquivo",
		"Save layout, timeline and scene frames":          "Salvar layout, linha do tempo e quadros das cenas",
		"Debug output directory":                          "Diretório de depuração",
		"Debug output: %s":                                "Saída de depuração: %s",
		"Summary written to %s":                           "Resumo gravado em %s",

		// Scene command
		"Edit the storyboard scenes":                           "Editar as cenas do roteiro",
		"List the scenes in order":                             "Listar as cenas em ordem",
		"Append a scene":                                       "Adicionar uma cena",
		"Change a scene":                                       "Alterar uma cena",
		"Remove a scene":                                       "Remover uma cena",
		"Move a scene to a 1-based position":                   "Mover uma cena para uma posição (a partir de 1)",
		"Use a gallery item as a scene's media":                "Usar um item da galeria como mídia da cena",
		"Paint a scene's first frame to a PNG file":            "Desenhar o primeiro quadro da cena em PNG",
		"Output PNG file":                                      "Arquivo PNG de saída",
		"Narration text, also used as the subtitle":            "Texto da narração, também usado como legenda",
		"Narration voice (Zephyr, Puck, Charon, Kore, Fenrir)": "Voz da narração (Zephyr, Puck, Charon, Kore, Fenrir)",
		"Scene duration in seconds":                            "Duração da cena em segundos",
		"Show the narration text as a subtitle":                "Mostrar o texto da narração como legenda",
		"Local image or video file, added to the gallery":      "Imagem ou vídeo local, adicionado à galeria",
		"Media URL used as is":                                 "URL da mídia usada como está",
		"Media kind for --url (image or video)":                "Tipo de mídia para --url (image ou video)",
		"Gallery item to link":                                 "Item da galeria a vincular",
		"Recorded narration audio file":                        "Arquivo de áudio da narração gravada",
		"Insert at this 1-based position instead of appending": "Inserir nesta posição (a partir de 1) em vez de adicionar ao fim",
		"Remove the recorded narration":                        "Remover a narração gravada",
		"The storyboard is empty":                              "O roteiro está vazio",
		"(re-upload required)":                                 "(reenvio necessário)",
		"%d scenes, %.1fs total":                               "%d cenas, %.1fs no total",

		// Gallery command
		"Manage generated and uploaded media":       "Gerenciar mídias geradas e enviadas",
		"List gallery items, newest first":          "Listar itens da galeria, mais recentes primeiro",
		"Add a local file or a URL to the gallery":  "Adicionar um arquivo local ou URL à galeria",
		"Media kind for a URL (image or video)":     "Tipo de mídia para uma URL (image ou video)",
		"Item name":                                 "Nome do item",
		"Remove a gallery item":                     "Remover um item da galeria",
		"Move a gallery item to a 1-based position": "Mover um item da galeria para uma posição (a partir de 1)",
		"Write a gallery item to a directory":       "Gravar um item da galeria em um diretório",
		"Target directory":                          "Diretório de destino",
		"The gallery is empty":                      "A galeria está vazia",
		"%s is only kept for this session":          "%s só será mantido nesta sessão",

		// Generate command
		"Generate media with Gemini":                  "Gerar mídia com o Gemini",
		"Generate an image into the gallery":          "Gerar uma imagem na galeria",
		"Visual style":                                "Estilo visual",
		"Aspect ratio (default: the render ratio)":    "Proporção (padrão: a da renderização)",
		"Also link the image into this scene":         "Também vincular a imagem a esta cena",
		"Generate narration audio for a scene's text": "Gerar o áudio da narração a partir do texto da cena",
		"Save a spoken sample of a voice":             "Salvar uma amostra falada de uma voz",
		"Generating image...":                         "Gerando imagem...",
		"Generating narration with voice %s":          "Gerando narração com a voz %s",

		// API key command
		"Manage the Gemini API key":                                     "Gerenciar a chave de API do Gemini",
		"Store the API key; an empty key clears it":                     "Guardar a chave de API; uma chave vazia a remove",
		"Show the active API key, masked":                               "Mostrar a chave de API ativa, mascarada",
		"No API key configured":                                         "Nenhuma chave de API configurada",
		"GEMINI_API_KEY is set in the environment and takes precedence": "GEMINI_API_KEY está definida no ambiente e tem prioridade",
		"stored":      "armazenada",
		"environment": "ambiente",

		// Storyboard command
		"Import, export or clear the whole storyboard": "Importar, exportar ou limpar o roteiro inteiro",
		"Write the storyboard as YAML":                 "Gravar o roteiro em YAML",
		"Replace the storyboard with a YAML file":      "Substituir o roteiro por um arquivo YAML",
		"Clear the stored studio state":                "Limpar o estado salvo do estúdio",
		"Imported %d scenes":                           "%d cenas importadas",

		// Render summary
		"Render Summary":     "Resumo da Renderização",
		"Generated":          "Gerado em",
		"Scenes":             "Cenas",
		"No scenes":          "Nenhuma cena",
		"Media":              "Mídia",
		"Duration":           "Duração",
		"Start":              "Início",
		"Frames":             "Quadros",
		"Subtitle":           "Legenda",
		"Narration":          "Narração",
		"Settings":           "Configurações",
		"Aspect Ratio":       "Proporção",
		"FPS":                "FPS",
		"Codec":              "Codec",
		"Narration Overflow": "Excesso de narração",
		"Clock":              "Relógio",
		"virtual":            "virtual",
		"realtime":           "tempo real",
		"Video":              "Vídeo",
		"Canvas Size":        "Tamanho da tela",
		"File Size":          "Tamanho do arquivo",
		"Output":             "Saída",
		"Gallery Item":       "Item da galeria",
		"Notices":            "Avisos",
		"Resources":          "Recursos",
		"Peak Memory":        "Pico de memória",
		"CPU Time":           "Tempo de CPU",
		"yes":                "sim",
		"no":                 "não",
	})
}

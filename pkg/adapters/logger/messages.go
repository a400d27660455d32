package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("pt", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting pipeline":                  "Iniciando o pipeline",
		"Calculating layout":                 "Calculando o layout",
		"Layout calculated: %dx%d canvas":    "Layout calculado: tela de %dx%d",
		"Rendering %d scenes at %.0f fps":    "Renderizando %d cenas a %.0f fps",
		"Scene %d/%d":                        "Cena %d/%d",
		"Video encoded: %d bytes":            "Vídeo codificado: %d bytes",
		"Output saved to %s":                 "Saída salva em %s",
		"Pipeline completed successfully":    "Pipeline concluído com sucesso",
		"Render cancelled, output discarded": "Renderização cancelada, saída descartada",
		"Interrupted, shutting down...":      "Interrompido, encerrando...",
		"Scene %d: %s":                       "Cena %d: %s",

		// Narration
		"Narration audio unavailable for scene %s: %v":            "Áudio de narração indisponível para a cena %s: %v",
		"Narration generation failed, falling back to speech: %v": "Falha ao gerar a narração, usando a voz do sistema: %v",
		"Speech synthesis failed, scene %s stays silent: %v":      "Falha na síntese de voz, a cena %s ficará em silêncio: %v",

		// Recorder
		"No audio muxer configured, dropping %d narration cues": "Nenhum mixer de áudio configurado, descartando %d trechos de narração",
		"%s encoder not available, falling back to %s":          "Codificador %s indisponível, usando %s",

		// Product sink
		"Output extension .%s does not match the %s container": "A extensão .%s da saída não corresponde ao contêiner %s",
		"Could not verify MP4 output: %v":                      "Não foi possível verificar a saída MP4: %v",
		"MP4 output carries %s, expected %s":                   "A saída MP4 contém %s, esperado %s",

		// Errors
		"Failed to calculate layout: %s":  "Falha ao calcular o layout: %s",
		"Failed to render storyboard: %s": "Falha ao renderizar o roteiro: %s",
		"Failed to write output: %s":      "Falha ao gravar a saída: %s",
	})
}

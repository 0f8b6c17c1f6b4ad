package service

import (
	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// Clipboard notices shown to the user
const (
	ClipboardCopiedNotice = "Mensaje copiado ✅"
	ClipboardFailedNotice = "No se pudo copiar. Selecciona el texto manualmente."
)

// clipboardWriteAll is swapped in tests
var clipboardWriteAll = clipboard.WriteAll

// CopyToClipboard copies text to the system clipboard. It never fails:
// the returned notice tells the user whether the copy worked.
func CopyToClipboard(text string, logger *zap.SugaredLogger) (string, bool) {
	if err := clipboardWriteAll(text); err != nil {
		logger.Warnf("⚠️  Clipboard: Copy failed: %v", err)
		return ClipboardFailedNotice, false
	}
	return ClipboardCopiedNotice, true
}

package httpadapter

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/raglab/docqa/internal/core/domain"
)

const maxUploadMemory = 32 << 20

type uploadFileResponse struct {
	FileName   string `json:"fileName"`
	DocumentID string `json:"documentId"`
	Index      string `json:"index"`
	Ready      *bool  `json:"ready,omitempty"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

func (rt *Router) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		return
	}

	var files []domain.UploadFile
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			file, err := header.Open()
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable multipart file"})
				return
			}
			content, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable multipart file"})
				return
			}
			files = append(files, domain.UploadFile{Name: header.Filename, Content: content})
		}
	}

	wait := rt.parseWait(r)
	receipts, err := rt.uploader.Upload(r.Context(), files, r.FormValue("country"), wait)
	status := "success"
	if err != nil {
		status = "error"
	}
	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, status, len(receipts))
	}
	if err != nil && len(receipts) == 0 {
		writeError(w, err)
		return
	}

	response := make([]uploadFileResponse, 0, len(receipts))
	for _, receipt := range receipts {
		entry := uploadFileResponse{
			FileName:   receipt.FileName,
			DocumentID: receipt.DocumentID,
			Index:      receipt.Index,
		}
		if receipt.Wait != nil {
			ready := receipt.Wait.Ready
			entry.Ready = &ready
			entry.Diagnostic = receipt.Wait.Diagnostic
		}
		response = append(response, entry)
	}

	// Partial batch failure: the imported files stay imported, the
	// error names the file that stopped the batch.
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]any{
			"files": response,
			"error": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"files": response})
}

func (rt *Router) parseWait(r *http.Request) time.Duration {
	enabled, err := strconv.ParseBool(r.FormValue("wait"))
	if err != nil || !enabled {
		return 0
	}
	wait := rt.cfg.ReadyWaitTimeout
	if raw := r.FormValue("waitSeconds"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			wait = time.Duration(seconds) * time.Second
		}
	}
	return wait
}

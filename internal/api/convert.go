package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/nerrad567/wardrive-core/internal/survey"
)

// multipartMemory is how much of an upload is held in memory before the
// multipart reader spills to disk.
const multipartMemory = 8 << 20

// Output modes for POST /convert.
const (
	outputCSV  = "csv"
	outputJSON = "json"
)

// handleConvert converts an uploaded survey log.
//
// The file arrives as multipart field "file". Its original name is kept so
// extension-based detection works. ?output=csv (default) streams the table;
// ?output=json returns the full Result including records.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	output := strings.ToLower(r.URL.Query().Get("output"))
	if output == "" {
		output = outputCSV
	}
	if output != outputCSV && output != outputJSON {
		writeBadRequest(w, "output must be csv or json")
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", maxErr.Limit))
			return
		}
		writeBadRequest(w, "expected multipart form with a file field")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "missing file field")
		return
	}
	defer file.Close()

	dir, err := os.MkdirTemp("", "wardrive-upload-*")
	if err != nil {
		s.logger.Error("creating upload dir failed", "error", err)
		writeInternalError(w, "failed to stage upload")
		return
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	path := filepath.Join(dir, uploadName(header.Filename))
	if err := saveUpload(path, file); err != nil {
		s.logger.Error("saving upload failed", "error", err)
		writeInternalError(w, "failed to stage upload")
		return
	}

	res, err := s.converter.ConvertAs(r.Context(), path, uploadName(header.Filename))
	s.counters.record(err == nil, len(res.Records))
	w.Header().Set("X-Run-ID", res.RunID)
	w.Header().Set("X-Format", string(res.Format))

	if err != nil {
		if errors.Is(err, survey.ErrNoRecords) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  Error{Status: http.StatusUnprocessableEntity, Code: ErrCodeNoRecords, Message: "no records could be extracted"},
				"result": res,
			})
			return
		}
		s.logger.Error("conversion failed", "run_id", res.RunID, "error", err)
		writeInternalError(w, "conversion failed")
		return
	}

	if output == outputJSON {
		writeJSON(w, http.StatusOK, res)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", convertedName(header.Filename)))
	w.WriteHeader(http.StatusOK)
	if err := s.converter.WriteRecords(w, res.Records); err != nil {
		s.logger.Warn("streaming table failed", "run_id", res.RunID, "error", err)
	}
}

// uploadName reduces a client-supplied file name to a safe base name.
func uploadName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}

// convertedName is the download name offered for a converted upload.
func convertedName(name string) string {
	base := uploadName(name)
	return strings.TrimSuffix(base, filepath.Ext(base)) + survey.ConvertedSuffix
}

func saveUpload(path string, src io.Reader) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(f, src)
	return err
}

package web

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/flatbridge/internal/flatfile"
	"github.com/JonMunkholm/flatbridge/internal/schema"
)

// multipartMemory is how much of a multipart upload is held in memory before
// spilling to temp files.
const multipartMemory = 32 << 20

// fileConfigRequest is the JSON form of a flat-file config. Content is sent
// as text or as base64 (for compressed or non-UTF-8 files); omitting both
// means no content was supplied.
type fileConfigRequest struct {
	Filename      string  `json:"filename"`
	Delimiter     string  `json:"delimiter"`
	Content       *string `json:"content,omitempty"`
	ContentBase64 *string `json:"contentBase64,omitempty"`
}

func (f fileConfigRequest) config() (flatfile.Config, error) {
	content := flatfile.NoContent()
	switch {
	case f.ContentBase64 != nil:
		data, err := base64.StdEncoding.DecodeString(*f.ContentBase64)
		if err != nil {
			return flatfile.Config{}, fmt.Errorf("invalid request: content is not valid base64: %w", err)
		}
		content = flatfile.BytesContent(data)
	case f.Content != nil:
		content = flatfile.TextContent(*f.Content)
	}
	return flatfile.NewConfig(f.Filename, f.Delimiter, content)
}

// transferRequest is the body shared by the browse and ingest endpoints.
type transferRequest struct {
	Direction string              `json:"direction"`
	Source    schema.SourceConfig `json:"source"`
	File      fileConfigRequest   `json:"file"`
	Table     string              `json:"table"`
	Selected  []string            `json:"selectedColumns"`
}

// decoded is a transferRequest with the file config resolved.
type decoded struct {
	transferRequest
	file flatfile.Config
}

// decodeRequest reads a JSON body, or a multipart form with the file in the
// "file" field and the other values as form fields.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (decoded, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Transfer.MaxUploadSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return decodeMultipart(r)
	}

	var req transferRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return decoded{}, bodyError(err)
	}

	file, err := req.File.config()
	if err != nil {
		return decoded{}, err
	}
	return decoded{transferRequest: req, file: file}, nil
}

func decodeMultipart(r *http.Request) (decoded, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return decoded{}, bodyError(err)
	}

	req := transferRequest{
		Direction: r.FormValue("direction"),
		Table:     r.FormValue("table"),
		Selected:  formList(r, "selectedColumns"),
		File: fileConfigRequest{
			Filename:  r.FormValue("filename"),
			Delimiter: r.FormValue("delimiter"),
		},
	}
	if port := r.FormValue("port"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return decoded{}, fmt.Errorf("invalid request: port %q is not a number", port)
		}
		req.Source.Port = n
	}
	req.Source.Host = r.FormValue("host")
	req.Source.Database = r.FormValue("database")
	req.Source.User = r.FormValue("user")
	req.Source.Password = r.FormValue("password")

	content := flatfile.NoContent()
	f, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return decoded{}, fmt.Errorf("read upload: %w", err)
		}
		content = flatfile.BytesContent(data)
		if req.File.Filename == "" {
			req.File.Filename = header.Filename
		}
	case !errors.Is(err, http.ErrMissingFile):
		return decoded{}, bodyError(err)
	}

	file, err := flatfile.NewConfig(req.File.Filename, req.File.Delimiter, content)
	if err != nil {
		return decoded{}, err
	}
	return decoded{transferRequest: req, file: file}, nil
}

// formList accepts repeated fields and comma-separated values.
func formList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.MultipartForm.Value[name] {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func bodyError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return fmt.Errorf("invalid request: body exceeds %d bytes", tooBig.Limit)
	}
	return fmt.Errorf("invalid request body: %w", err)
}

// decodeJSON reads a small JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return bodyError(err)
	}
	return nil
}

// parseIntParam parses a positive integer query parameter.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

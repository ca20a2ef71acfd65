// Package client: multipart uploads.
//
// Upload bodies are streamed: a writer goroutine feeds an io.Pipe, opening
// each file only when its part is written and closing it right after, so at
// most one source is open at a time and nothing is buffered in memory.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/vaultsens/vaultsens-go/apierr"
)

// sniffLen is how many leading bytes are inspected to pick a part's
// Content-Type.
const sniffLen = 3072

// Multipart field names understood by /files/upload and /files/{id}.
const (
	fieldFile        = "file"
	fieldFiles       = "files"
	fieldName        = "name"
	fieldCompression = "compression"
	fieldFolderID    = "folderId"
)

// UploadOptions are the optional text fields of an upload.
// Empty values are not sent.
type UploadOptions struct {
	Name        string // display name for the stored file
	Compression string // server-side compression level, e.g. "low" or "high"
	FolderID    string // destination folder; ignored by UpdateFile
}

// FilePart is one file in a multipart upload.
// Open is called once, from the body writer, and the returned ReadCloser is
// always closed.
type FilePart struct {
	Filename string
	Open     func() (io.ReadCloser, error)

	// release frees a source that exists before Open is called; it runs
	// only when the part is never written.
	release func()
}

// FileFromPath validates that path names a regular file and returns a part
// that opens it lazily.
func FileFromPath(path string) (FilePart, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return FilePart{}, errors.New("file path is required")
	}
	clean := filepath.Clean(path)
	if err := ensureFileIsRegular(clean); err != nil {
		return FilePart{}, err
	}
	return FilePart{
		Filename: filepath.Base(clean),
		Open: func() (io.ReadCloser, error) {
			return os.Open(clean)
		},
	}, nil
}

// FileFromReader wraps a caller-supplied stream. If r is an io.ReadCloser it
// is closed once the part is written (or the upload is abandoned).
func FileFromReader(filename string, r io.Reader) FilePart {
	return FilePart{
		Filename: filename,
		Open: func() (io.ReadCloser, error) {
			if rc, ok := r.(io.ReadCloser); ok {
				return rc, nil
			}
			return io.NopCloser(r), nil
		},
		release: func() { closeBody(r) },
	}
}

type formField struct {
	name, value string
}

func (o *UploadOptions) fields(withFolder bool) []formField {
	if o == nil {
		return nil
	}
	var out []formField
	if o.Name != "" {
		out = append(out, formField{fieldName, o.Name})
	}
	if o.Compression != "" {
		out = append(out, formField{fieldCompression, o.Compression})
	}
	if withFolder && o.FolderID != "" {
		out = append(out, formField{fieldFolderID, o.FolderID})
	}
	return out
}

// UploadFile uploads a single local file (POST /files/upload, field "file").
func (c *Client) UploadFile(ctx context.Context, filePath string, opts *UploadOptions) (Result, error) {
	if _, err := c.requireCredentials(); err != nil {
		return nil, err
	}
	part, err := FileFromPath(filePath)
	if err != nil {
		return nil, apierr.Local(fmt.Errorf("upload file: %w", err))
	}
	return c.sendMultipart(ctx, http.MethodPost, "/files/upload", fieldFile, []FilePart{part}, opts.fields(true))
}

// UploadFiles uploads several local files in one request
// (POST /files/upload, repeated field "files").
func (c *Client) UploadFiles(ctx context.Context, filePaths []string, opts *UploadOptions) (Result, error) {
	if _, err := c.requireCredentials(); err != nil {
		return nil, err
	}
	if len(filePaths) == 0 {
		return nil, apierr.Local(errors.New("upload files: no files given"))
	}
	parts := make([]FilePart, 0, len(filePaths))
	for _, p := range filePaths {
		part, err := FileFromPath(p)
		if err != nil {
			return nil, apierr.Local(fmt.Errorf("upload files: %w", err))
		}
		parts = append(parts, part)
	}
	return c.sendMultipart(ctx, http.MethodPost, "/files/upload", fieldFiles, parts, opts.fields(true))
}

// UploadReader uploads a caller-supplied stream as a single file.
func (c *Client) UploadReader(ctx context.Context, filename string, r io.Reader, opts *UploadOptions) (Result, error) {
	if r == nil {
		return nil, c.localOrAuth(errors.New("upload reader: reader is required"))
	}
	return c.Upload(ctx, []FilePart{FileFromReader(filename, r)}, fieldFile, opts)
}

// Upload sends caller-built parts in one POST /files/upload. An empty field
// means "file" for a single part and "files" otherwise. Every part's source
// is released whether or not the request is sent.
func (c *Client) Upload(ctx context.Context, parts []FilePart, field string, opts *UploadOptions) (Result, error) {
	if err := validateParts(parts); err != nil {
		releaseParts(parts)
		return nil, c.localOrAuth(fmt.Errorf("upload: %w", err))
	}
	if _, err := c.requireCredentials(); err != nil {
		releaseParts(parts)
		return nil, err
	}
	if field == "" {
		field = fieldFiles
		if len(parts) == 1 {
			field = fieldFile
		}
	}
	return c.sendMultipart(ctx, http.MethodPost, "/files/upload", field, parts, opts.fields(true))
}

// localOrAuth keeps the credential error ahead of argument errors.
func (c *Client) localOrAuth(err error) error {
	if _, aerr := c.requireCredentials(); aerr != nil {
		return aerr
	}
	return apierr.Local(err)
}

func validateParts(parts []FilePart) error {
	if len(parts) == 0 {
		return errors.New("no files given")
	}
	for i, p := range parts {
		if strings.TrimSpace(p.Filename) == "" {
			return fmt.Errorf("part %d: filename is required", i)
		}
		if p.Open == nil {
			return fmt.Errorf("part %q: no source", p.Filename)
		}
	}
	return nil
}

func releaseParts(parts []FilePart) {
	for _, p := range parts {
		if p.release != nil {
			p.release()
		}
	}
}

// UpdateFile replaces the content of an existing file (PUT /files/{id}).
// opts.FolderID is ignored.
func (c *Client) UpdateFile(ctx context.Context, fileID, filePath string, opts *UploadOptions) (Result, error) {
	if _, err := c.requireCredentials(); err != nil {
		return nil, err
	}
	seg, err := pathSegment("file id", fileID)
	if err != nil {
		return nil, apierr.Local(fmt.Errorf("update file: %w", err))
	}
	part, err := FileFromPath(filePath)
	if err != nil {
		return nil, apierr.Local(fmt.Errorf("update file: %w", err))
	}
	return c.sendMultipart(ctx, http.MethodPut, "/files/"+seg, fieldFile, []FilePart{part}, opts.fields(false))
}

func (c *Client) sendMultipart(ctx context.Context, method, path, field string, parts []FilePart, fields []formField) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	body, contentType := newMultipartBody(ctx, field, parts, fields)
	return c.Do(ctx, method, path, &RequestOptions{
		Body:        body,
		ContentType: contentType,
	})
}

// newMultipartBody starts the writer goroutine and returns the read side of
// the pipe. Closing the returned reader (net/http does, and so does Do)
// makes the writer stop and release whatever it has open.
func newMultipartBody(ctx context.Context, field string, parts []FilePart, fields []formField) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	contentType := mw.FormDataContentType()

	go func() {
		var werr error
		next := 0
		defer func() { releaseParts(parts[next:]) }()
		defer func() {
			if werr != nil {
				_ = pw.CloseWithError(werr)
			} else {
				_ = pw.Close()
			}
		}()

		// Close the pipe if ctx is canceled.
		stop := context.AfterFunc(ctx, func() {
			_ = pw.CloseWithError(ctx.Err())
		})
		defer stop()

		if err := ctx.Err(); err != nil {
			werr = err
			return
		}

		for next < len(parts) {
			p := parts[next]
			next++
			if werr = writeFilePart(mw, field, p); werr != nil {
				return
			}
		}
		for _, f := range fields {
			if werr = mw.WriteField(f.name, f.value); werr != nil {
				return
			}
		}
		werr = mw.Close()
	}()

	return pr, contentType
}

func writeFilePart(mw *multipart.Writer, field string, p FilePart) error {
	if p.Open == nil {
		return fmt.Errorf("part %q: no source", p.Filename)
	}
	rc, err := p.Open()
	if err != nil {
		return fmt.Errorf("open %q: %w", p.Filename, err)
	}
	defer func() { _ = rc.Close() }()

	br := bufio.NewReaderSize(rc, sniffLen)
	head, _ := br.Peek(sniffLen) // short files return fewer bytes
	mtype := mimetype.Detect(head)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(field), escapeQuotes(p.Filename)))
	h.Set("Content-Type", mtype.String())

	w, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %q: %w", p.Filename, err)
	}
	if _, err := io.Copy(w, br); err != nil {
		return fmt.Errorf("write part %q: %w", p.Filename, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// ensureFileIsRegular makes sure path exists and is not a directory.
func ensureFileIsRegular(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("%q is a directory, need a file", path)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%q is not a regular file", path)
	}
	return nil
}

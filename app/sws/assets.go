package sws

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
)

// StatusError is a handler error with http status to report
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string { return fmt.Sprintf("%d: %v", e.Code, e.Err) }

// Unwrap returns the wrapped error
func (e *StatusError) Unwrap() error { return e.Err }

// Assets streams files from a single root. Dot files and paths escaping the root rejected.
type Assets struct {
	FS    fs.FS
	Index string // served for empty name, if set
}

// Serve streams the file to w. On success the response owned by the stream and result is delegated.
// Client errors returned as *StatusError without file system details in the status.
func (a Assets) Serve(w http.ResponseWriter, r *http.Request, name string) (Result, error) {
	if name == "" {
		name = a.Index
	}
	if err := checkAssetName(name); err != nil {
		return Result{}, err
	}
	if a.FS == nil {
		return Result{}, &StatusError{Code: http.StatusNotFound, Err: errors.New("no assets root")}
	}

	f, err := a.FS.Open(name)
	if err != nil {
		return Result{}, &StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("open %s: %w", name, err)}
	}
	defer f.Close() //nolint

	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		return Result{}, &StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("%s is not a file", name)}
	}

	ctype := mime.TypeByExtension(path.Ext(name))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)

	if rs, ok := f.(io.ReadSeeker); ok {
		src := &assetReader{ReadSeeker: rs}
		http.ServeContent(w, r, path.Base(name), fi.ModTime(), src)
		if src.err != nil {
			// headers are gone, the only thing left is to drop the connection
			panic(http.ErrAbortHandler)
		}
		return Delegate(), nil
	}

	w.Header().Set("Content-Length", strconv.FormatInt(fi.Size(), 10))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return Delegate(), nil
	}
	if _, err := io.Copy(w, f); err != nil {
		panic(http.ErrAbortHandler)
	}
	return Delegate(), nil
}

// checkAssetName rejects traversal and dot files with 403 and malformed names with 404
func checkAssetName(name string) error {
	if name == "" {
		return &StatusError{Code: http.StatusNotFound, Err: errors.New("empty file name")}
	}
	if strings.ContainsAny(name, "\x00\\") {
		return &StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("bad file name %q", name)}
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return &StatusError{Code: http.StatusForbidden, Err: fmt.Errorf("traversal in %q", name)}
		}
		if strings.HasPrefix(seg, ".") {
			return &StatusError{Code: http.StatusForbidden, Err: fmt.Errorf("dot file in %q", name)}
		}
	}
	if !fs.ValidPath(name) {
		return &StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("invalid file name %q", name)}
	}
	return nil
}

// assetReader keeps read error of the underlying file, ServeContent swallows it
type assetReader struct {
	io.ReadSeeker
	err error
}

func (a *assetReader) Read(p []byte) (int, error) {
	n, err := a.ReadSeeker.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		a.err = err
	}
	return n, err
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/huddlechat/huddle/internal/db"
)

const maxUploadBytes = 10 << 20

// uploadServer hands out one-shot upload URLs on a loopback listener
// and writes accepted blobs to a directory next to the database file.
type uploadServer struct {
	listener net.Listener
	server   *http.Server
	dir      string
	local    *Local

	mu     sync.Mutex
	tokens map[string]bool
}

// RequestUploadDestination implements DataService. Each returned URL
// accepts exactly one upload.
func (l *Local) RequestUploadDestination(ctx context.Context) (string, error) {
	if err := l.ensureUploads(); err != nil {
		return "", &TransportError{Op: "request upload destination", Err: err}
	}
	token := uuid.NewString()
	l.uploads.mu.Lock()
	l.uploads.tokens[token] = true
	l.uploads.mu.Unlock()
	return fmt.Sprintf("http://%s/u/%s", l.uploads.listener.Addr(), token), nil
}

// BlobPath returns where an uploaded blob's bytes live on disk.
func (l *Local) BlobPath(ref string) string {
	return filepath.Join(blobDir(l.path), ref)
}

func blobDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "blobs")
}

func (l *Local) ensureUploads() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.uploads != nil {
		return nil
	}

	dir := blobDir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}

	us := &uploadServer{
		listener: listener,
		dir:      dir,
		local:    l,
		tokens:   make(map[string]bool),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/u/", us.handleUpload)
	us.server = &http.Server{Handler: mux, ReadTimeout: time.Minute}
	go func() {
		_ = us.server.Serve(listener)
	}()

	l.uploads = us
	return nil
}

func (us *uploadServer) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = us.server.Shutdown(ctx)
}

func (us *uploadServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	token := filepath.Base(r.URL.Path)

	us.mu.Lock()
	ok := us.tokens[token]
	delete(us.tokens, token)
	us.mu.Unlock()
	if !ok {
		http.Error(w, "unknown upload destination", http.StatusNotFound)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes+1))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	if len(data) > maxUploadBytes {
		http.Error(w, "too large", http.StatusRequestEntityTooLarge)
		return
	}

	ref := "blob-" + uuid.NewString()
	if err := os.WriteFile(filepath.Join(us.dir, ref), data, 0o644); err != nil {
		http.Error(w, "store blob", http.StatusInternalServerError)
		return
	}
	if err := db.InsertBlob(us.local.conn, ref, r.Header.Get("Content-Type"), int64(len(data)), us.local.now()); err != nil {
		http.Error(w, "record blob", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"storageId": ref})
}

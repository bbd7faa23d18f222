// Package netstoragetest provides an in-memory NetStorage server for tests.
//
// The server speaks the ACS protocol over TLS, verifies request signatures
// with the configured credential and keeps its content in a Store.
//
//	srv := netstoragetest.NewServer(cred, "123456")
//	defer srv.Close()
//	client, err := netstorage.New(srv.Config(), netstorage.WithTransport(srv.Transport()))
package netstoragetest

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/netstorage/pkg/netstorage"
)

// Request is one request seen by the server.
type Request struct {
	Method string
	Action string
	// Path is the decoded wire path, without leading slash.
	Path string
}

// Server is a fake NetStorage endpoint.
type Server struct {
	*httptest.Server

	credential netstorage.Credential
	cpCode     string
	store      *Store

	mu       sync.Mutex
	requests []Request
	failures map[string]int
}

// NewServer starts a TLS server for the storage group cpCode that accepts
// requests signed with credential.
func NewServer(credential netstorage.Credential, cpCode string) *Server {
	s := &Server{
		credential: credential,
		cpCode:     cpCode,
		store:      NewStore(cpCode),
		failures:   make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.authenticate)
	r.Use(s.inject)
	r.Get("/*", s.handleGet)
	r.Put("/*", s.handlePut)

	s.Server = httptest.NewTLSServer(r)
	return s
}

// Store exposes the server content.
func (s *Server) Store() *Store {
	return s.store
}

// Host is the server address without scheme.
func (s *Server) Host() string {
	return strings.TrimPrefix(s.URL, "https://")
}

// Transport trusts the server certificate.
func (s *Server) Transport() http.RoundTripper {
	return s.Client().Transport
}

// Config returns a client configuration pointing at the server.
func (s *Server) Config() netstorage.Config {
	return netstorage.Config{
		Host:       s.Host(),
		StaticHost: s.Host(),
		CPCode:     s.cpCode,
		Credential: s.credential,
	}
}

// FailOn makes requests for action on the wire path answer with status.
func (s *Server) FailOn(action netstorage.Action, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[failureKey(action.String(), path)] = status
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests carried action.
func (s *Server) Count(action netstorage.Action) int {
	n := 0
	for _, req := range s.Requests() {
		if req.Action == action.String() {
			n++
		}
	}
	return n
}

// Reset forgets the recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func failureKey(action, path string) string {
	return action + " " + netstorage.PathFromString(path).String()
}

func wirePath(r *http.Request) string {
	return netstorage.PathFromString(r.URL.Path).String()
}

func actionOf(r *http.Request) string {
	action, err := netstorage.ActionFromHeader(r.Header.Get(netstorage.ActionHeader))
	if err != nil {
		return ""
	}
	return action.String()
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Action: actionOf(r), Path: wirePath(r)})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(netstorage.ActionHeader)
		if header == "" {
			http.Error(w, "Missing action header", http.StatusForbidden)
			return
		}

		signer := netstorage.NewSigner(s.credential).
			WithPath(netstorage.PathFromString(r.URL.EscapedPath())).
			WithActionHeader(header)
		err := signer.Verify(r.Header.Get(netstorage.AuthDataHeader), r.Header.Get(netstorage.AuthSignHeader))
		if err != nil {
			slog.Debug("netstoragetest: rejected request", "path", r.URL.Path, "err", err)
			http.Error(w, "Authentication failed", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, ok := s.failures[failureKey(actionOf(r), wirePath(r))]
		s.mu.Unlock()
		if ok {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	path := wirePath(r)

	switch actionOf(r) {
	case "stat":
		f, err := s.store.Stat(path)
		if err != nil {
			writeError(w, err)
			return
		}
		render.XML(w, r, netstorage.ListingXML{
			Directory: "/" + f.Path.String(),
			Files:     []netstorage.FileXML{netstorage.NewFileXML(f)},
		})

	case "dir":
		files, err := s.store.List(path)
		if err != nil {
			writeError(w, err)
			return
		}
		doc := netstorage.ListingXML{Directory: "/" + path}
		for _, f := range files {
			doc.Files = append(doc.Files, netstorage.NewFileXML(f))
		}
		render.XML(w, r, doc)

	case "du":
		files, bytes, err := s.store.Usage(path)
		if err != nil {
			writeError(w, err)
			return
		}
		doc := netstorage.DiskUsageXML{Directory: "/" + path}
		doc.Info.Files = files
		doc.Info.Bytes = bytes
		render.XML(w, r, doc)

	case "download":
		data, err := s.store.Get(path)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(data)

	default:
		http.Error(w, "Unsupported action", http.StatusBadRequest)
	}
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	path := wirePath(r)

	var err error
	switch actionOf(r) {
	case "upload":
		var data []byte
		data, err = io.ReadAll(r.Body)
		if err == nil {
			err = s.store.Put(path, data)
		}
	case "delete":
		err = s.store.Delete(path)
	case "rmdir":
		err = s.store.Rmdir(path)
	case "mkdir":
		err = s.store.Mkdir(path)
	default:
		http.Error(w, "Unsupported action", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, errNotEmpty), errors.Is(err, errIsDir), errors.Is(err, errNotDir):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

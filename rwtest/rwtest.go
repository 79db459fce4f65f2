// This package contains testing utilities for the catalog client, chiefly
// a mock catalog HTTP server speaking the catalog's JSON envelope.
package rwtest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/gorilla/mux"

	"github.com/vizzuality/rwgo/catalog"
)

// Enables DEBUG log messages for the structured log (slog).
func EnableDebugLogging() {
	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelDebug)
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
}

// A Server is a mock catalog serving canned dataset and layer records. It
// records mutation calls so tests can assert on them.
type Server struct {
	*httptest.Server

	// canned records, by ID
	Datasets map[string]catalog.RawRecord
	Layers   map[string]catalog.RawRecord
	// canned rows served by the SQL pass-through, by dataset ID
	QueryRows map[string][]catalog.Row

	// statuses returned by mutation endpoints (zero means 200)
	PatchStatus  int
	DeleteStatus int

	// mutation bookkeeping
	Patched map[string]map[string]any // last PATCH payload per record ID
	Deleted []string                  // record IDs deleted, in order

	// SQL statements received by the query pass-through, in order
	Queries []string
	// page[size] values received by list endpoints, in order
	PageSizes []string
}

// NewCatalogServer starts a mock catalog with the given dataset and layer
// fixtures. Callers own the returned server and must Close it.
func NewCatalogServer(datasets, layers []catalog.RawRecord) *Server {
	s := &Server{
		Datasets:  make(map[string]catalog.RawRecord),
		Layers:    make(map[string]catalog.RawRecord),
		QueryRows: make(map[string][]catalog.Row),
		Patched:   make(map[string]map[string]any),
		Deleted:   make([]string, 0),
	}
	for _, d := range datasets {
		s.Datasets[d.Id] = d
	}
	for _, l := range layers {
		s.Layers[l.Id] = l
	}

	r := mux.NewRouter()
	r.HandleFunc("/v1/dataset", s.listHandler(s.Datasets)).Methods("GET")
	r.HandleFunc("/v1/layer", s.listHandler(s.Layers)).Methods("GET")
	r.HandleFunc("/v1/dataset/{id}", s.getHandler(s.Datasets)).Methods("GET")
	r.HandleFunc("/v1/layer/{id}", s.getHandler(s.Layers)).Methods("GET")
	r.HandleFunc("/v1/query/{id}", s.queryHandler).Methods("GET")
	r.HandleFunc("/dataset/{id}", s.patchHandler(s.Datasets)).Methods("PATCH")
	r.HandleFunc("/layer/{id}", s.patchHandler(s.Layers)).Methods("PATCH")
	r.HandleFunc("/dataset/{id}", s.deleteHandler(s.Datasets)).Methods("DELETE")
	r.HandleFunc("/layer/{id}", s.deleteHandler(s.Layers)).Methods("DELETE")

	s.Server = httptest.NewServer(r)
	return s
}

// creates a catalog client pointed at the mock server
func (s *Server) Client() *catalog.Client {
	client, _ := catalog.NewClient(catalog.Config{URL: s.URL})
	return client
}

func writeJson(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body, _ := json.Marshal(data)
	w.Write(body)
}

func (s *Server) listHandler(records map[string]catalog.RawRecord) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.PageSizes = append(s.PageSizes, r.URL.Query().Get("page[size]"))
		list := make([]catalog.RawRecord, 0, len(records))
		for _, record := range records {
			list = append(list, record)
		}
		writeJson(w, map[string]any{"data": list}, http.StatusOK)
	}
}

func (s *Server) getHandler(records map[string]catalog.RawRecord) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		record, found := records[id]
		if !found {
			writeJson(w, map[string]any{"errors": "not found"}, http.StatusNotFound)
			return
		}
		writeJson(w, map[string]any{"data": record}, http.StatusOK)
	}
}

func (s *Server) queryHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.Queries = append(s.Queries, r.URL.Query().Get("sql"))
	rows, found := s.QueryRows[id]
	if !found {
		writeJson(w, map[string]any{"errors": "not found"}, http.StatusNotFound)
		return
	}
	writeJson(w, map[string]any{"data": rows}, http.StatusOK)
}

func (s *Server) patchHandler(records map[string]catalog.RawRecord) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		record, found := records[id]
		if !found {
			writeJson(w, map[string]any{"errors": "not found"}, http.StatusNotFound)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJson(w, map[string]any{"errors": err.Error()}, http.StatusBadRequest)
			return
		}
		s.Patched[id] = payload
		if s.PatchStatus != 0 && s.PatchStatus != http.StatusOK {
			writeJson(w, map[string]any{"errors": "patch refused"}, s.PatchStatus)
			return
		}
		for k, v := range payload {
			record.Attributes[k] = v
		}
		records[id] = record
		writeJson(w, map[string]any{"data": record}, http.StatusOK)
	}
}

func (s *Server) deleteHandler(records map[string]catalog.RawRecord) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if _, found := records[id]; !found {
			writeJson(w, map[string]any{"errors": "not found"}, http.StatusNotFound)
			return
		}
		if s.DeleteStatus != 0 && s.DeleteStatus != http.StatusOK {
			writeJson(w, map[string]any{"errors": "delete refused"}, s.DeleteStatus)
			return
		}
		s.Deleted = append(s.Deleted, id)
		delete(records, id)
		writeJson(w, map[string]any{}, http.StatusOK)
	}
}

// DatasetRecord builds a dataset fixture with the given identity and
// attributes, plus the requested number of attached layer sub-objects.
func DatasetRecord(id, name, description, provider string, numLayers int) catalog.RawRecord {
	layers := make([]any, 0, numLayers)
	for i := 0; i < numLayers; i++ {
		layers = append(layers, map[string]any{
			"id":   id + "-layer-" + string(rune('a'+i)),
			"type": "layer",
			"attributes": map[string]any{
				"name":    name + " layer",
				"dataset": id,
			},
		})
	}
	return catalog.RawRecord{
		Id:   id,
		Type: "dataset",
		Attributes: map[string]any{
			"name":        name,
			"description": description,
			"provider":    provider,
			"application": []any{"rw"},
			"env":         "production",
			"layer":       layers,
			"metadata":    []any{},
			"vocabulary":  []any{},
		},
	}
}

// LayerRecord builds a layer fixture belonging to the given dataset.
func LayerRecord(id, name, description, datasetId string) catalog.RawRecord {
	return catalog.RawRecord{
		Id:   id,
		Type: "layer",
		Attributes: map[string]any{
			"name":        name,
			"description": description,
			"dataset":     datasetId,
			"application": []any{"rw"},
		},
	}
}

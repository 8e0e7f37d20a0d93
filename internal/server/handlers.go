package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/guppy-rs/guppy/pkg/dag"
	"github.com/guppy-rs/guppy/pkg/graph"
	"github.com/guppy-rs/guppy/pkg/platform"
)

// MemberView is one workspace member.
type MemberView struct {
	Path    string          `json:"path"`
	ID      graph.PackageID `json:"id"`
	Default bool            `json:"default,omitempty"`
}

// WorkspaceView is the response of GET /workspace.
type WorkspaceView struct {
	Root            string              `json:"root"`
	TargetDirectory string              `json:"target_directory"`
	Members         []MemberView        `json:"members"`
	Cycles          [][]graph.PackageID `json:"cycles"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: strconv.Itoa(status)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePackages(w http.ResponseWriter, r *http.Request) {
	views := make([]graph.PackageView, 0, s.graph.Len())
	for _, p := range s.graph.Packages() {
		views = append(views, graph.NewPackageView(p))
	}
	writeJSON(w, http.StatusOK, views)
}

// packageParam looks up the {id} URL parameter, writing a 4xx response if
// it is malformed or unknown.
func (s *Server) packageParam(w http.ResponseWriter, r *http.Request) (*graph.PackageMetadata, bool) {
	raw := chi.URLParam(r, "id")
	id, err := url.PathUnescape(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid package id: "+raw)
		return nil, false
	}
	p, ok := s.graph.Metadata(graph.PackageID(id))
	if !ok {
		writeError(w, http.StatusNotFound, "package not found: "+id)
		return nil, false
	}
	return p, true
}

func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	p, ok := s.packageParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, graph.NewPackageView(p))
}

func (s *Server) handleDeps(w http.ResponseWriter, r *http.Request) {
	p, ok := s.packageParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	dir := dag.Outgoing
	switch q.Get("direction") {
	case "", "outgoing":
	case "incoming":
		dir = dag.Incoming
	default:
		writeError(w, http.StatusBadRequest, "direction must be outgoing or incoming")
		return
	}

	var kinds []graph.DependencyKind
	if k := q.Get("kind"); k != "" {
		kind, ok := graph.ParseDependencyKind(k)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown dependency kind: "+k)
			return
		}
		kinds = append(kinds, kind)
	}

	var plat *platform.Platform
	if triple := q.Get("platform"); triple != "" {
		var err error
		if plat, err = platform.New(triple); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	links, _ := s.graph.DepLinks(p.ID, dir)
	views := make([]graph.LinkView, 0, len(links))
	for _, l := range links {
		if !l.Selected(plat, kinds...) {
			continue
		}
		views = append(views, graph.NewLinkView(l))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleTopo(w http.ResponseWriter, r *http.Request) {
	order := s.graph.TopoOrder()
	if r.URL.Query().Get("workspace") == "true" {
		ws := s.graph.Workspace()
		members := order[:0:0]
		for _, id := range order {
			if ws.Contains(id) {
				members = append(members, id)
			}
		}
		order = members
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	ws := s.graph.Workspace()
	defaults := make(map[graph.PackageID]bool)
	for _, id := range ws.DefaultMembers() {
		defaults[id] = true
	}

	view := WorkspaceView{
		Root:            ws.Root,
		TargetDirectory: ws.TargetDirectory,
		Members:         make([]MemberView, 0, ws.Len()),
		Cycles:          s.graph.Cycles(),
	}
	for _, path := range ws.Paths() {
		id, _ := ws.MemberByPath(path)
		view.Members = append(view.Members, MemberView{Path: path, ID: id, Default: defaults[id]})
	}
	writeJSON(w, http.StatusOK, view)
}

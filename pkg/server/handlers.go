package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stacksize/pkg/apt"
	"github.com/matzehuels/stacksize/pkg/buildinfo"
	"github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/pipeline"
	"github.com/matzehuels/stacksize/pkg/profile"
	"github.com/matzehuels/stacksize/pkg/report"
)

// maxResolveRoots bounds POST /resolve.
const maxResolveRoots = 500

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Source   string `json:"source"`
	Digest   string `json:"digest"`
	Packages int    `json:"packages"`
	Virtual  int    `json:"virtual"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Version:  buildinfo.Version,
		Source:   s.cfg.Source.String(),
		Digest:   s.cfg.Stats.IndexDigest,
		Packages: s.cfg.Index.Len(),
		Virtual:  s.cfg.Index.VirtualLen(),
	})
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Profiles)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidateProfileName(name); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := profile.Lookup(s.cfg.Profiles, name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type packageResponse struct {
	Name          string   `json:"name"`
	Virtual       bool     `json:"virtual"`
	InstalledSize int64    `json:"installed_size,omitempty"`
	Depends       []string `json:"depends,omitempty"`
	Providers     []string `json:"providers,omitempty"`
}

func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidatePackageName(name); err != nil {
		writeError(w, r, errors.Field("name", err.(*errors.Error)))
		return
	}
	idx := s.cfg.Index
	if !idx.Known(name) {
		writeError(w, r, errors.New(errors.ErrCodeNotFound, "package %q is not in the index", name))
		return
	}
	resp := packageResponse{Name: name, Providers: idx.Providers(name)}
	if rec, ok := idx.Lookup(name); ok {
		resp.InstalledSize = rec.InstalledSize
		resp.Depends = rec.Depends
	} else {
		resp.Virtual = true
	}
	writeJSON(w, http.StatusOK, resp)
}

type resolveRequest struct {
	Packages []string `json:"packages"`
}

type resolvedPackage struct {
	Name  string   `json:"name"`
	Size  int64    `json:"size"`
	Depth int      `json:"depth"`
	Via   string   `json:"via,omitempty"`
	Why   []string `json:"why,omitempty"`
}

type resolveResponse struct {
	Roots      []string          `json:"roots"`
	Packages   []resolvedPackage `json:"packages"`
	Dropped    []string          `json:"dropped,omitempty"`
	Count      int               `json:"count"`
	TotalBytes int64             `json:"total_bytes"`
	Total      string            `json:"total"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Packages) > maxResolveRoots {
		writeError(w, r, errors.Field("packages", errors.New(errors.ErrCodeInvalidInput, "too many packages (max %d)", maxResolveRoots)))
		return
	}

	// Blank entries are skipped and names outside the index come back in
	// Dropped, the same as for any other unresolvable root.
	res := apt.NewResolver(s.cfg.Index, apt.Options{}).Resolve(req.Packages)
	resp := resolveResponse{
		Roots:      res.Roots,
		Dropped:    res.Dropped,
		Count:      res.Len(),
		TotalBytes: res.Size(),
		Total:      report.HumanSize(res.Size()),
		Packages:   make([]resolvedPackage, 0, res.Len()),
	}
	for _, name := range res.Order() {
		n, _ := res.Graph.Node(name)
		p := resolvedPackage{Name: name, Size: s.cfg.Index.Size(name), Depth: n.Depth}
		p.Via, _ = n.Meta[apt.MetaVia].(string)
		if n.Depth > 0 {
			p.Why = res.Why(name)
		}
		resp.Packages = append(resp.Packages, p)
	}
	writeJSON(w, http.StatusOK, resp)
}

type estimateRequest struct {
	Profiles []string          `json:"profiles"`
	Custom   []profile.Profile `json:"custom,omitempty"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	selected, err := profile.Select(s.cfg.Profiles, req.Profiles...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Custom) > 0 {
		if len(req.Profiles) == 0 {
			selected = nil
		}
		for _, p := range req.Custom {
			if err := p.Validate(); err != nil {
				writeError(w, r, err)
				return
			}
			selected = append(selected, p)
		}
	}

	opts := pipeline.Options{
		Source:    s.cfg.Source,
		Profiles:  selected,
		Artifacts: s.cfg.Artifacts,
		Strict:    s.cfg.Strict,
		Logger:    s.cfg.Logger,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	rows := make([]report.Row, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)
	for i, p := range selected {
		g.Go(func() error {
			est, err := s.cfg.Runner.Estimate(gctx, s.cfg.Index, s.cfg.Stats.IndexDigest, p, opts)
			rows[i] = est.Row
			return err
		})
	}
	if err := g.Wait(); err != nil {
		writeError(w, r, err)
		return
	}

	rep := report.New(s.cfg.Source.String())
	rep.IndexDigest = s.cfg.Stats.IndexDigest
	rep.Rows = rows
	if id := RequestIDFrom(ctx); id != "" {
		rep.RunID = id
	}
	writeJSON(w, http.StatusOK, rep)
}

package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"

	"github.com/mastercactapus/probecnc/coord"
	"github.com/mastercactapus/probecnc/fixture"
	"github.com/mastercactapus/probecnc/machine"
	"github.com/mastercactapus/probecnc/probe"
	"github.com/mastercactapus/probecnc/store"
	"github.com/mastercactapus/probecnc/surface"
)

type api struct {
	http.Handler
	m        *machine.Machine
	fixtures *fixture.Store
	history  *store.Store
	dataDir  string
	cfg      config
	sse      *sse.Server
}

func newAPI(m *machine.Machine, fixtures *fixture.Store, history *store.Store, dir string, cfg config) *api {
	r := mux.NewRouter()

	a := &api{
		Handler:  r,
		m:        m,
		fixtures: fixtures,
		history:  history,
		dataDir:  dir,
		cfg:      cfg,
		sse: sse.NewServer(&sse.Options{
			Logger: log.New(io.Discard, "", 0),
		}),
	}

	r.HandleFunc("/api/probe/centre", a.probeCentre).Methods("POST")
	r.HandleFunc("/api/probe/edge", a.probeEdge).Methods("POST")
	r.HandleFunc("/api/probe/surface", a.probeSurface).Methods("POST")
	r.HandleFunc("/api/probe/options", a.probeOptions).Methods("GET")
	r.HandleFunc("/api/hold/probe", a.holdForProbe).Methods("POST")

	r.HandleFunc("/api/run", a.run).Methods("POST")
	r.HandleFunc("/api/runs", a.listRuns).Methods("GET")
	r.HandleFunc("/api/runs/{id}", a.getRun).Methods("GET")
	r.HandleFunc("/api/runs/{id}/fixture", a.fixtureFromRun).Methods("POST")

	r.HandleFunc("/api/fixtures", a.listFixtures).Methods("GET")
	r.HandleFunc("/api/fixtures/{name}", a.putFixture).Methods("PUT")
	r.HandleFunc("/api/fixtures/{name}/activate", a.activateFixture).Methods("POST")

	fs := http.FileServer(http.Dir(dir))
	r.PathPrefix("/data/").Handler(http.StripPrefix("/data", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case "GET":
			fs.ServeHTTP(w, req)
		case "PUT":
			a.putFile(w, req)
		case "DELETE":
			a.deleteFile(w, req)
		default:
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		}
	})))

	r.PathPrefix("/events/").Handler(a.sse)
	go func() {
		for state := range m.State() {
			data, err := json.Marshal(state)
			if err != nil {
				log.Printf("ERROR: marshal json: %+v", err)
				continue
			}
			a.sse.SendMessage("/events/state", sse.SimpleMessage(string(data)))
		}
	}()
	go func() {
		for msg := range m.HoldMessage() {
			a.sse.SendMessage("/events/message", sse.SimpleMessage(msg))
		}
	}()

	return a
}

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: encode: %+v", err)
	}
}

type probeResponse struct {
	RunID  int64       `json:"runId"`
	Point  coord.Point `json:"point"`

	// LocalPoint is Point expressed in the active fixture's
	// coordinate system.
	LocalPoint coord.Point `json:"localPoint"`

	Angle  *float64      `json:"angle,omitempty"`
	Angles []float64     `json:"angles,omitempty"`
	Points []coord.Point `json:"points"`
}

func (a *api) probeCentre(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Direction    probe.Direction `json:"direction"`
		Points       int             `json:"points"`
		MoveToResult bool            `json:"moveToResult"`
		Run          runParams       `json:"run"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opt := probe.CentreOptions{Direction: body.Direction, Points: body.Points, MoveToResult: body.MoveToResult}
	run := a.cfg.buildRun(body.Run)
	res, err := a.m.ProbeCentre(req.Context(), opt, run)
	if err != nil {
		log.Printf("ERROR: probe centre: %+v", err)
		http.Error(w, err.Error(), probeStatus(err))
		return
	}

	id, err := a.history.RecordCentre(opt, run, res)
	if err != nil {
		log.Printf("ERROR: record run: %+v", err)
	}
	respondJSON(w, probeResponse{
		RunID:      id,
		Point:      res.Point,
		LocalPoint: a.fixtures.Active().ToLocal(res.Point),
		Points:     res.Points,
	})
}

func (a *api) probeEdge(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Edges        int          `json:"edges"`
		Edge         probe.Edge   `json:"edge"`
		Corner       probe.Corner `json:"corner"`
		Retract      float64      `json:"retract"`
		MoveToResult bool         `json:"moveToResult"`
		Run          runParams    `json:"run"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opt := probe.EdgeOptions{
		Edges:        body.Edges,
		Edge:         body.Edge,
		Corner:       body.Corner,
		Retract:      body.Retract,
		MoveToResult: body.MoveToResult,
	}
	if opt.Retract == 0 {
		opt.Retract = a.cfg.Retract
	}
	run := a.cfg.buildRun(body.Run)
	res, err := a.m.ProbeEdge(req.Context(), opt, run)
	if err != nil {
		log.Printf("ERROR: probe edge: %+v", err)
		http.Error(w, err.Error(), probeStatus(err))
		return
	}

	id, err := a.history.RecordEdge(opt, run, res)
	if err != nil {
		log.Printf("ERROR: record run: %+v", err)
	}
	respondJSON(w, probeResponse{
		RunID:      id,
		Point:      res.Point,
		LocalPoint: a.fixtures.Active().ToLocal(res.Point),
		Angle:      res.Angle,
		Angles:     res.Angles,
		Points:     res.Points,
	})
}

func (a *api) probeSurface(w http.ResponseWriter, req *http.Request) {
	var body struct {
		DistanceX   float64   `json:"distanceX"`
		DistanceY   float64   `json:"distanceY"`
		Granularity float64   `json:"granularity"`
		MaxTravel   float64   `json:"maxTravel"`
		Run         runParams `json:"run"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opt := probe.SurfaceOptions{
		DistanceX:   body.DistanceX,
		DistanceY:   body.DistanceY,
		Granularity: body.Granularity,
		MaxTravel:   body.MaxTravel,
	}
	run := a.cfg.buildRun(body.Run)
	svy, err := a.m.ProbeSurface(req.Context(), opt, run)
	if err != nil {
		log.Printf("ERROR: probe surface: %+v", err)
		http.Error(w, err.Error(), probeStatus(err))
		return
	}

	id, err := a.history.RecordSurface(opt, run, coord.Centroid(svy.Points), svy.Points)
	if err != nil {
		log.Printf("ERROR: record run: %+v", err)
	}
	respondJSON(w, struct {
		RunID  int64           `json:"runId"`
		Report *surface.Report `json:"report"`
		Points []coord.Point   `json:"points"`

		// Heights resamples the triangulated mesh at half the probed
		// granularity.
		Heights []coord.Point `json:"heights"`
	}{id, svy.Report, svy.Points, svy.Mesh.Sample(opt.Granularity / 2)})
}

func (a *api) holdForProbe(w http.ResponseWriter, req *http.Request) {
	if err := a.m.HoldForProbe(); err != nil {
		log.Printf("ERROR: hold: %+v", err)
		http.Error(w, err.Error(), 500)
	}
}

// run executes raw lines, like the MDI input of a controller UI.
func (a *api) run(w http.ResponseWriter, req *http.Request) {
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return
	}

	var program strings.Builder
	for _, str := range strings.Split(string(data), "\n") {
		str = strings.TrimSpace(str)
		if str == "" {
			continue
		}
		program.WriteString(str + "\n")
	}
	if _, err = a.m.Write([]byte(program.String())); err != nil {
		log.Printf("ERROR: run: %+v", err)
		http.Error(w, err.Error(), 500)
	}
}

func (a *api) listRuns(w http.ResponseWriter, req *http.Request) {
	limit := 50
	if s := req.FormValue("limit"); s != "" {
		var err error
		if limit, err = strconv.Atoi(s); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	recs, err := a.history.ListRuns(limit)
	if err != nil {
		log.Printf("ERROR: list runs: %+v", err)
		http.Error(w, err.Error(), 500)
		return
	}
	respondJSON(w, recs)
}

func (a *api) runFromRequest(w http.ResponseWriter, req *http.Request) *store.Record {
	id, err := strconv.ParseInt(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	rec, err := a.history.GetRun(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil
	}
	return rec
}

func (a *api) getRun(w http.ResponseWriter, req *http.Request) {
	rec := a.runFromRequest(w, req)
	if rec == nil {
		return
	}
	respondJSON(w, rec)
}

// fixtureFromRun derives a fixture from a recorded probing result
// and saves it.
func (a *api) fixtureFromRun(w http.ResponseWriter, req *http.Request) {
	name := req.FormValue("name")
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	rec := a.runFromRequest(w, req)
	if rec == nil {
		return
	}

	f := fixture.FromResult(name, &probe.Result{
		Point: rec.Point,
		Angle: rec.Angle,
	})
	if err := a.fixtures.Put(f); err != nil {
		log.Printf("ERROR: save fixture: %+v", err)
		http.Error(w, err.Error(), 500)
		return
	}
	respondJSON(w, f)
}

func (a *api) listFixtures(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, struct {
		Active   fixture.Fixture   `json:"active"`
		Fixtures []fixture.Fixture `json:"fixtures"`
	}{a.fixtures.Active(), a.fixtures.List()})
}

func (a *api) putFixture(w http.ResponseWriter, req *http.Request) {
	var f fixture.Fixture
	if err := json.NewDecoder(req.Body).Decode(&f); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.Name = mux.Vars(req)["name"]
	if err := a.fixtures.Put(f); err != nil {
		log.Printf("ERROR: save fixture: %+v", err)
		http.Error(w, err.Error(), 500)
	}
}

func (a *api) activateFixture(w http.ResponseWriter, req *http.Request) {
	if err := a.fixtures.SetActive(mux.Vars(req)["name"]); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
	}
}

func probeStatus(err error) int {
	switch {
	case errors.Is(err, probe.ErrProbeTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, probe.ErrInsufficientPoints), errors.Is(err, probe.ErrParallelEdges):
		return http.StatusUnprocessableEntity
	default:
		return 500
	}
}

func safePath(base, name string) (bool, string) {
	if filepath.Separator != '/' && strings.ContainsRune(name, filepath.Separator) {
		log.Println("invalid path '" + name + "'")
		return false, ""
	}
	dir := base
	if dir == "" {
		dir = "."
	}
	fullName := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+name)))
	return true, fullName
}

func (a *api) putFile(w http.ResponseWriter, req *http.Request) {
	ok, name := safePath(a.dataDir, req.URL.Path)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	os.MkdirAll(filepath.Dir(name), 0755)
	f, err := os.Create(name)
	if err != nil {
		log.Printf("ERROR: create '%s': %+v", name, err)
		http.Error(w, err.Error(), 500)
		return
	}
	defer f.Close()
	if _, err = io.Copy(f, req.Body); err != nil {
		log.Printf("ERROR: write '%s': %+v", name, err)
		http.Error(w, err.Error(), 500)
	}
}

func (a *api) deleteFile(w http.ResponseWriter, req *http.Request) {
	ok, name := safePath(a.dataDir, req.URL.Path)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := os.Remove(name); err != nil {
		log.Printf("ERROR: delete '%s': %+v", name, err)
		http.Error(w, err.Error(), 500)
	}
}

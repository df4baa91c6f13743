// Package api exposes the note engine over HTTP so a browser front end can
// drive the transport, edit the program and poll note state.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/leandrodaf/solfa/sdk/contracts"
	"github.com/leandrodaf/solfa/sdk/solfa"
)

// Server routes HTTP requests to an engine.
type Server struct {
	engine *solfa.Engine
	logger contracts.Logger
	router *mux.Router
}

// NewServer builds the routing table around the engine.
func NewServer(engine *solfa.Engine, logger contracts.Logger) *Server {
	s := &Server{engine: engine, logger: logger}

	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/notes", s.handleActiveNotes).Methods(http.MethodGet)
	r.HandleFunc("/notes", s.handleAttack).Methods(http.MethodPost)
	r.HandleFunc("/notes/{id}", s.handleRelease).Methods(http.MethodDelete)
	r.HandleFunc("/display", s.handleDisplay).Methods(http.MethodGet)
	r.HandleFunc("/transport", s.handleTransportState).Methods(http.MethodGet)
	r.HandleFunc("/transport/start", s.handleStart).Methods(http.MethodPost)
	r.HandleFunc("/transport/stop", s.handleStop).Methods(http.MethodPost)
	r.HandleFunc("/transport/tempo", s.handleTempo).Methods(http.MethodPut)
	r.HandleFunc("/program", s.handleProgram).Methods(http.MethodGet)
	r.HandleFunc("/program", s.handleClearProgram).Methods(http.MethodDelete)
	r.HandleFunc("/program/beats", s.handleAddBeat).Methods(http.MethodPost)
	r.HandleFunc("/program/beats", s.handleRemoveBeat).Methods(http.MethodDelete)
	r.HandleFunc("/devices", s.handleDevices).Methods(http.MethodGet)
	s.router = r
	return s
}

// Handler wraps the router with CORS so browser front ends on another origin
// can call it.
func (s *Server) Handler() http.Handler {
	return cors.AllowAll().Handler(s.router)
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("control server listening", s.logger.Field().String("addr", addr))
	return http.ListenAndServe(addr, s.Handler())
}

type noteJSON struct {
	NoteID    string    `json:"noteId"`
	Solfege   string    `json:"solfege"`
	Octave    int       `json:"octave"`
	NoteName  string    `json:"noteName"`
	MIDIKey   uint8     `json:"midiKey"`
	StartedAt time.Time `json:"startedAt"`
}

type beatJSON struct {
	Step          int    `json:"step"`
	Solfege       string `json:"solfege"`
	Octave        int    `json:"octave"`
	DurationSteps int    `json:"durationSteps"`
}

type deviceJSON struct {
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	EntityName   string `json:"entityName"`
}

type errorJSON struct {
	Error string `json:"error"`
}

func toNoteJSON(rec contracts.NoteRecord) noteJSON {
	return noteJSON{
		NoteID:    rec.NoteID,
		Solfege:   rec.Solfege.String(),
		Octave:    rec.Octave,
		NoteName:  rec.NoteName,
		MIDIKey:   rec.MIDIKey,
		StartedAt: rec.StartedAt,
	}
}

func toNoteList(recs []contracts.NoteRecord) []noteJSON {
	out := make([]noteJSON, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toNoteJSON(rec))
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", s.logger.Field().Error("error", err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorJSON{Error: err.Error()})
}

func (s *Server) handleActiveNotes(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, toNoteList(s.engine.Active()))
}

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Solfege string `json:"solfege"`
		Octave  int    `json:"octave"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	degree, ok := contracts.ParseSolfege(in.Solfege)
	if !ok {
		s.writeJSON(w, http.StatusBadRequest, errorJSON{Error: "unknown solfège name: " + in.Solfege})
		return
	}
	rec, ok := s.engine.Attack(r.Context(), degree, in.Octave)
	if !ok {
		s.writeJSON(w, http.StatusConflict, errorJSON{Error: "note could not be attacked"})
		return
	}
	s.writeJSON(w, http.StatusCreated, toNoteJSON(rec))
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	// Releasing an unknown id is a no-op; either way the note is gone.
	s.engine.Release(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDisplay(w http.ResponseWriter, _ *http.Request) {
	acc := s.engine.Display()
	s.writeJSON(w, http.StatusOK, struct {
		Visible bool       `json:"visible"`
		Notes   []noteJSON `json:"notes"`
	}{
		Visible: acc.Visible(),
		Notes:   toNoteList(acc.Snapshot()),
	})
}

func (s *Server) handleTransportState(w http.ResponseWriter, _ *http.Request) {
	st := s.engine.State()
	s.writeJSON(w, http.StatusOK, struct {
		Playing     bool    `json:"playing"`
		Tempo       float64 `json:"tempo"`
		CurrentStep int     `json:"currentStep"`
	}{st.Playing, st.Tempo, st.CurrentStep})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Tempo float64 `json:"tempo"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if err := s.engine.Play(in.Tempo); err != nil {
		s.writeError(w, http.StatusConflict, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.engine.StopPlayback()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTempo(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Tempo float64 `json:"tempo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.engine.SetTempo(in.Tempo); err != nil {
		s.writeError(w, http.StatusConflict, err)
		return
	}
	s.handleTransportState(w, r)
}

func (s *Server) handleProgram(w http.ResponseWriter, _ *http.Request) {
	beats := s.engine.Program().All()
	out := make([]beatJSON, 0, len(beats))
	for _, b := range beats {
		out = append(out, beatJSON{
			Step:          b.Step,
			Solfege:       b.Solfege.String(),
			Octave:        b.Octave,
			DurationSteps: b.DurationSteps,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClearProgram(w http.ResponseWriter, _ *http.Request) {
	if err := s.engine.Program().Clear(); err != nil {
		s.writeError(w, http.StatusConflict, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddBeat(w http.ResponseWriter, r *http.Request) {
	var in beatJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	degree, ok := contracts.ParseSolfege(in.Solfege)
	if !ok {
		s.writeJSON(w, http.StatusBadRequest, errorJSON{Error: "unknown solfège name: " + in.Solfege})
		return
	}
	err := s.engine.Program().Add(contracts.Beat{
		Step:          in.Step,
		Solfege:       degree,
		Octave:        in.Octave,
		DurationSteps: in.DurationSteps,
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleRemoveBeat(w http.ResponseWriter, r *http.Request) {
	var in beatJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	degree, ok := contracts.ParseSolfege(in.Solfege)
	if !ok {
		s.writeJSON(w, http.StatusBadRequest, errorJSON{Error: "unknown solfège name: " + in.Solfege})
		return
	}
	if err := s.engine.Program().Remove(in.Step, degree, in.Octave); err != nil {
		s.writeError(w, http.StatusConflict, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDevices(w http.ResponseWriter, _ *http.Request) {
	devices, err := s.engine.Devices()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]deviceJSON, 0, len(devices))
	for _, d := range devices {
		out = append(out, deviceJSON{d.Name, d.Manufacturer, d.EntityName})
	}
	s.writeJSON(w, http.StatusOK, out)
}

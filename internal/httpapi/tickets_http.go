package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"backoffice/internal/domain"
	"backoffice/internal/report"
)

type TicketService interface {
	ListDay(ctx context.Context, agentID int64, date string) ([]domain.Entry, error)
	Get(ctx context.Context, id int64) (domain.Entry, error)
	Create(ctx context.Context, in domain.NewEntry) (domain.Entry, error)
	Update(ctx context.Context, id int64, in domain.EntryUpdate) (domain.Entry, error)
	Delete(ctx context.Context, id int64) error
	Location() *time.Location
}

type AgentDirectory interface {
	Authenticate(email, password string) (domain.Agent, error)
	Lookup(id int64) (domain.Agent, bool)
}

// TicketHTTP wires the ticket endpoints to the entry service.
type TicketHTTP struct {
	tickets TicketService
	agents  AgentDirectory
	log     zerolog.Logger
}

func NewTicketHTTP(tickets TicketService, agents AgentDirectory, log zerolog.Logger) *TicketHTTP {
	return &TicketHTTP{tickets: tickets, agents: agents, log: log}
}

// GET /tickets?agentId=&date=
func (h *TicketHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, date, err := dayQuery(r)
		if err != nil {
			writeDomainError(w, r, h.log, err)
			return
		}
		items, err := h.tickets.ListDay(r.Context(), agentID, date)
		if err != nil {
			writeDomainError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// GET /tickets/export?agentId=&date=
func (h *TicketHTTP) Export() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, date, err := dayQuery(r)
		if err != nil {
			writeDomainError(w, r, h.log, err)
			return
		}
		items, err := h.tickets.ListDay(r.Context(), agentID, date)
		if err != nil {
			writeDomainError(w, r, h.log, err)
			return
		}
		agent, ok := h.agents.Lookup(agentID)
		if !ok {
			writeDomainError(w, r, h.log, &domain.AgentNotFoundError{ID: agentID})
			return
		}
		day, _ := domain.ParseDay(date)

		body := report.BuildTSV(agent.Name(), items, h.tickets.Location())
		w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.ExportFilename(agent.Name(), day)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}

// GET /tickets/{id}
func (h *TicketHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := entryID(r)
		if !ok {
			writeError(w, http.StatusNotFound, "Entry not found.")
			return
		}
		e, err := h.tickets.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// POST /tickets
func (h *TicketHTTP) Create() http.HandlerFunc {
	type inDTO struct {
		Number      string `json:"number"`
		AgentID     int64  `json:"agentId"`
		Action      string `json:"action"`
		Description string `json:"description"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := decodeJSON(w, r, &in); err != nil {
			writeDomainError(w, r, h.log, err)
			return
		}
		e, err := h.tickets.Create(r.Context(), domain.NewEntry{
			Number:      in.Number,
			AgentID:     in.AgentID,
			Action:      in.Action,
			Description: in.Description,
		})
		if err != nil {
			writeDomainError(w, r, h.log, err)
			return
		}
		w.Header().Set("Location", "/tickets/"+strconv.FormatInt(e.ID, 10))
		writeJSON(w, http.StatusCreated, e)
	}
}

// PUT /tickets/{id}
func (h *TicketHTTP) Update() http.HandlerFunc {
	type inDTO struct {
		Number      string `json:"number"`
		Action      string `json:"action"`
		Description string `json:"description"`
		BumpTime    bool   `json:"bumpTime"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := entryID(r)
		if !ok {
			writeError(w, http.StatusNotFound, "Entry not found.")
			return
		}
		var in inDTO
		if err := decodeJSON(w, r, &in); err != nil {
			writeDomainError(w, r, h.log, err)
			return
		}
		_, err := h.tickets.Update(r.Context(), id, domain.EntryUpdate{
			Number:      in.Number,
			Action:      in.Action,
			Description: in.Description,
			BumpTime:    in.BumpTime,
		})
		if err != nil {
			writeDomainError(w, r, h.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DELETE /tickets/{id}
func (h *TicketHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := entryID(r)
		if !ok {
			writeError(w, http.StatusNotFound, "Entry not found.")
			return
		}
		if err := h.tickets.Delete(r.Context(), id); err != nil {
			writeDomainError(w, r, h.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /login
func (h *TicketHTTP) Login() http.HandlerFunc {
	type inDTO struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	type outDTO struct {
		AgentID     int64  `json:"agentId"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := decodeJSON(w, r, &in); err != nil {
			writeDomainError(w, r, h.log, err)
			return
		}
		a, err := h.agents.Authenticate(in.Email, in.Password)
		if err != nil {
			writeDomainError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, outDTO{AgentID: a.ID, Email: a.Email, DisplayName: a.Name()})
	}
}

func dayQuery(r *http.Request) (int64, string, error) {
	qv := r.URL.Query()
	rawAgent := strings.TrimSpace(qv.Get("agentId"))
	date := strings.TrimSpace(qv.Get("date"))
	if rawAgent == "" || date == "" {
		return 0, "", domain.Invalidf("agentId and date (YYYY-MM-DD) are required.")
	}
	agentID, err := domain.ParseAgentID(rawAgent)
	if err != nil {
		return 0, "", err
	}
	return agentID, date, nil
}

func entryID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

/*
handlers.go - HTTP handlers for the election result pages

PURPOSE:
  Wires HTTP requests to the tally engine, the result aggregator, and the
  rendered-view cache. The pattern for every reporting view is the same:

  1. Check the cache (hit -> return as-is)
  2. Read the cache generation, compose from counters, render
  3. Put (a no-op below the activation threshold), return

  The vote form is pre-rendered once from the roster and served from
  memory; only the per-request message is substituted in.

ERROR HANDLING:
  Ballot rejections re-render the vote form with the rejection message and
  HTTP 200 (form resubmission semantics). Store failures are 500s for the
  request, never fatal to the process.

SEE ALSO:
  - server.go: Router setup and middleware
  - ../tally/engine.go: Validation order and tallying
*/
package api

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/warp/vote-engine/cache"
	"github.com/warp/vote-engine/tally"
	"github.com/warp/vote-engine/views"
)

// voteMessageToken is substituted per request in the pre-rendered form.
const voteMessageToken = "__VOTE_MESSAGE__"

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine   *tally.Engine
	Agg      *tally.Aggregator
	Cache    *cache.Cache
	Renderer *views.Renderer

	voteForm atomic.Value // string: rendered form with message token
}

// NewHandler creates a handler and pre-renders the vote form.
func NewHandler(engine *tally.Engine, agg *tally.Aggregator, c *cache.Cache, renderer *views.Renderer) (*Handler, error) {
	h := &Handler{Engine: engine, Agg: agg, Cache: c, Renderer: renderer}
	if err := h.renderVoteForm(); err != nil {
		return nil, err
	}
	return h, nil
}

// renderVoteForm renders the form once from the current roster. Called at
// construction and after Initialize, when the roster may have changed.
func (h *Handler) renderVoteForm() error {
	roster := h.Engine.Roster()
	names := make([]string, 0, roster.Len())
	for _, c := range roster.Candidates() {
		names = append(names, c.Name)
	}
	payload, err := h.Renderer.Render("vote", views.VoteView{
		Candidates: names,
		Message:    voteMessageToken,
	})
	if err != nil {
		return err
	}
	h.voteForm.Store(payload)
	return nil
}

// =============================================================================
// REPORTING VIEWS
// =============================================================================

// Index serves the overall ranking, party totals, and sex ratio.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, "index", func() (string, error) {
		ranking := h.Agg.TopRanking()
		view := views.IndexView{Ranking: make([]views.RankingRow, 0, len(ranking))}
		for _, entry := range ranking {
			view.Ranking = append(view.Ranking, rankingRow(entry.Candidate, entry.Count))
		}
		for _, p := range h.Agg.PartyTotals() {
			view.Parties = append(view.Parties, views.PartyRow{Name: p.Party, Count: p.Count})
		}
		ratio := h.Agg.SexRatio()
		view.Men = ratio.Men
		view.Women = ratio.Women
		view.MenPercent = ratio.MenPercent.StringFixed(2)
		view.WomenPercent = ratio.WomenPercent.StringFixed(2)

		return h.Renderer.Render("index", view)
	})
}

// Candidate serves the per-candidate detail page.
// GET /candidates/{id}
func (h *Handler) Candidate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	detail, ok := h.Agg.CandidateDetail(tally.CandidateID(id))
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.serveCached(w, fmt.Sprintf("candidate:%d", id), func() (string, error) {
		return h.Renderer.Render("candidate", views.CandidateView{
			ID:       int(detail.Candidate.ID),
			Name:     detail.Candidate.Name,
			Party:    detail.Candidate.Party,
			Count:    detail.Count,
			Keywords: keywordList(detail.Keywords),
		})
	})
}

// Party serves the per-party detail page. Unknown parties render with
// zero votes rather than erroring.
// GET /political_parties/{name}
func (h *Handler) Party(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	h.serveCached(w, "party:"+name, func() (string, error) {
		detail := h.Agg.PartyDetail(name)
		view := views.PartyView{
			Name:     detail.Party,
			Count:    detail.Count,
			Keywords: keywordList(detail.Keywords),
		}
		for _, c := range detail.Candidates {
			view.Candidates = append(view.Candidates, rankingRow(c, 0))
		}
		return h.Renderer.Render("political_party", view)
	})
}

// serveCached runs the cache-then-compose pattern shared by the three
// reporting views. The generation is read before composing so a racing
// purge wins.
func (h *Handler) serveCached(w http.ResponseWriter, key string, compose func() (string, error)) {
	view, _, _ := strings.Cut(key, ":") // label by view family, not key
	if payload, ok := h.Cache.Get(key); ok {
		cacheHits.WithLabelValues(view).Inc()
		writeHTML(w, http.StatusOK, payload)
		return
	}
	cacheMisses.WithLabelValues(view).Inc()

	gen := h.Cache.Gen()
	payload, err := compose()
	if err != nil {
		writeServerError(w, err)
		return
	}
	h.Cache.Put(key, payload, gen)
	writeHTML(w, http.StatusOK, payload)
}

// =============================================================================
// VOTING
// =============================================================================

// VoteForm serves the pre-rendered vote form.
// GET /vote
func (h *Handler) VoteForm(w http.ResponseWriter, r *http.Request) {
	h.serveVoteForm(w, "")
}

// CastVote accepts a form-encoded ballot. Rejections re-render the form
// with the matching message; only store failures are 500s.
// POST /vote
func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.serveVoteForm(w, "invalid form submission")
		return
	}

	// A non-numeric count falls through as zero and is rejected as
	// over-quota, matching the engine's closed error taxonomy.
	count, _ := strconv.ParseInt(r.PostFormValue("vote_count"), 10, 64)

	err := h.Engine.CastVote(r.Context(), tally.Ballot{
		Name:      r.PostFormValue("name"),
		Address:   r.PostFormValue("address"),
		MyNumber:  r.PostFormValue("mynumber"),
		Candidate: r.PostFormValue("candidate"),
		Keyword:   r.PostFormValue("keyword"),
		Count:     count,
	})

	switch {
	case err == nil:
		votesAccepted.Inc()
		h.serveVoteForm(w, "your vote has been recorded")
	case tally.IsValidation(err):
		votesRejected.WithLabelValues(rejectionReason(err)).Inc()
		h.serveVoteForm(w, err.Error())
	default:
		writeServerError(w, err)
	}
}

func (h *Handler) serveVoteForm(w http.ResponseWriter, message string) {
	form := h.voteForm.Load().(string)
	payload := strings.Replace(form, voteMessageToken, template.HTMLEscapeString(message), 1)
	writeHTML(w, http.StatusOK, payload)
}

// =============================================================================
// ADMINISTRATIVE
// =============================================================================

// Initialize resets vote facts, counters, and the view cache, then
// re-renders the vote form. Idempotent.
// GET /initialize
func (h *Handler) Initialize(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.Initialize(r.Context()); err != nil {
		writeServerError(w, err)
		return
	}
	if err := h.renderVoteForm(); err != nil {
		writeServerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// PurgeCache clears the rendered-view cache only; ledger and counters are
// untouched.
// POST /admin/cache/purge
func (h *Handler) PurgeCache(w http.ResponseWriter, r *http.Request) {
	h.Cache.PurgeAll()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func rankingRow(c tally.Candidate, count int64) views.RankingRow {
	return views.RankingRow{
		ID:    int(c.ID),
		Name:  c.Name,
		Party: c.Party,
		Count: count,
	}
}

func keywordList(keywords []tally.KeywordCount) []string {
	list := make([]string, 0, len(keywords))
	for _, kc := range keywords {
		list = append(list, kc.Keyword)
	}
	return list
}

func writeHTML(w http.ResponseWriter, status int, payload string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(payload))
}

func writeServerError(w http.ResponseWriter, err error) {
	log.Printf("request failed: %v", err)
	http.Error(w, "temporary failure, please retry", http.StatusInternalServerError)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, tally.ErrInvalidUser):
		return "invalid_user"
	case errors.Is(err, tally.ErrEmptyCandidate):
		return "empty_candidate"
	case errors.Is(err, tally.ErrInvalidCandidate):
		return "invalid_candidate"
	case errors.Is(err, tally.ErrMissingKeyword):
		return "missing_keyword"
	case errors.Is(err, tally.ErrQuotaExceeded):
		return "quota_exceeded"
	default:
		return "other"
	}
}

package httptransport

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/httputil"
	"vouch/pkg/requestcontext"
)

// Search terms are kept to characters that are safe in every backend filter.
var searchPattern = regexp.MustCompile(`^[a-zA-Z0-9\s]+$`)

var newlinePattern = regexp.MustCompile(`[\n\r]+`)

// HandleSearch handles GET /api/search?q=.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) <= 2 || !searchPattern.MatchString(query) {
		h.logger.InfoContext(ctx, "rejected directory search",
			"username", requestcontext.Username(ctx),
			"query", query,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput,
			"search words must be longer than 2 characters and only contain alpha-numeric characters and white space"))
		return
	}

	people := h.people.Search(ctx, query)
	h.logger.DebugContext(ctx, "directory search",
		"username", requestcontext.Username(ctx),
		"query", query,
		"matches", len(people),
	)
	httputil.WriteJSON(w, http.StatusOK, fromPeople(people, h.attributeNames))
}

// HandleCreateVerification handles POST /api/verifications. The session user
// vouches for the requested destination.
func (h *Handler) HandleCreateVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := requestcontext.Username(ctx)

	req, ok := httputil.DecodeJSON[CreateVerificationRequest](w, r)
	if !ok {
		return
	}
	if req.DestinationUID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "no user selected to verify"))
		return
	}

	record, err := h.verifications.Create(ctx, username, req.DestinationUID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification created",
		"source", username,
		"destination", req.DestinationUID,
		"remote_addr", r.RemoteAddr,
	)
	httputil.WriteJSON(w, http.StatusCreated, fromRecord(record))
}

// HandleListVerifications handles GET /api/verifications. The default view
// groups the session user's unexpired records by direction; history=true
// returns every record they were involved in.
func (h *Handler) HandleListVerifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := requestcontext.Username(ctx)

	if r.URL.Query().Get("history") == "true" {
		records, err := h.verifications.FindAllFor(ctx, username)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, VerificationHistoryResponse{History: fromRecords(records)})
		return
	}

	asSource, err := h.verifications.FindBySource(ctx, username)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	asDestination, err := h.verifications.FindByDestination(ctx, username)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VerificationListResponse{
		AsSource:      fromRecords(asSource),
		AsDestination: fromRecords(asDestination),
	})
}

// HandleGetVerification handles GET /api/verifications/{id}. Records are only
// visible to their participants; everyone else sees not found.
func (h *Handler) HandleGetVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := requestcontext.Username(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "verification id must be a positive integer"))
		return
	}

	record, err := h.verifications.FindByID(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if record.SourceUID != username && record.DestUID != username {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "verification not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRecord(record))
}

// HandleReport handles POST /api/reports.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := requestcontext.Username(ctx)

	req, ok := httputil.DecodeJSON[ReportRequest](w, r)
	if !ok {
		return
	}
	if req.VerificationID <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "verification id must be a positive integer"))
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "a reason is required"))
		return
	}

	h.logger.InfoContext(ctx, "suspicious verification reported",
		"username", username,
		"verification_id", req.VerificationID,
		"reason", newlinePattern.ReplaceAllString(req.Reason, " "),
	)
	if err := h.reports.Email(ctx, req.Reason, username, req.VerificationID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "submitted"})
}

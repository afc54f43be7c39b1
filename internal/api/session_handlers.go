package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/animerec/animerec-server/internal/metrics"
	"github.com/animerec/animerec-server/internal/service"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createSession",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions",
		Summary:       "Create session",
		Description:   "Starts an idle recommendation session",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Get session",
		Description: "Returns the session state",
		Tags:        []string{"Sessions"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "submitTitle",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/submit",
		Summary:     "Submit title",
		Description: "Resolves a title and returns its closest recommendation",
		Tags:        []string{"Sessions"},
	}, s.handleSubmit)

	huma.Register(s.api, huma.Operation{
		OperationID: "showAnother",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/another",
		Summary:     "Show another",
		Description: "Returns the next alternative, wrapping after the last. A new title replaces the list first",
		Tags:        []string{"Sessions"},
	}, s.handleAnother)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/reset",
		Summary:     "Reset session",
		Description: "Clears the session back to idle",
		Tags:        []string{"Sessions"},
	}, s.handleReset)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteSession",
		Method:        http.MethodDelete,
		Path:          "/api/v1/sessions/{id}",
		Summary:       "Delete session",
		Description:   "Removes a session",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteSession)
}

// === DTOs ===

// SessionResponse contains session state in API responses.
type SessionResponse struct {
	ID           string `json:"id" doc:"Session ID"`
	State        string `json:"state" doc:"idle, searching, result_ready or no_result"`
	Query        string `json:"query,omitempty" doc:"Last submitted title"`
	Source       string `json:"source,omitempty" doc:"Resolved source item ID"`
	Closest      string `json:"closest,omitempty" doc:"Closest item ID for the source"`
	Alternatives int    `json:"alternatives" doc:"Number of cached alternatives"`
	Cursor       int    `json:"cursor" doc:"Index of the next alternative"`
	BuildID      string `json:"build_id,omitempty" doc:"Snapshot build the alternatives were computed on"`
}

// SessionOutput wraps the session response for Huma.
type SessionOutput struct {
	Body SessionResponse
}

// SessionIDInput identifies a session.
type SessionIDInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// SubmitRequest is the request body for submitting a title.
type SubmitRequest struct {
	Title string `json:"title" minLength:"1" maxLength:"512" doc:"Title or alias to search for"`
}

// SubmitInput wraps the submit request for Huma.
type SubmitInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body SubmitRequest
}

// AnotherRequest is the request body for showing another recommendation.
type AnotherRequest struct {
	Title string `json:"title,omitempty" maxLength:"512" required:"false" doc:"Optional new title; empty keeps the current one"`
}

// AnotherInput wraps the another request for Huma.
type AnotherInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body *AnotherRequest
}

// StepResponse contains the result of one session step.
type StepResponse struct {
	Status  string          `json:"status" doc:"recommended, not_found, no_recommendation or no_more_recommendations"`
	Item    *ItemSummary    `json:"item,omitempty" doc:"Recommended item"`
	Session SessionResponse `json:"session" doc:"Session state after the step"`
}

// StepOutput wraps the step response for Huma.
type StepOutput struct {
	Body StepResponse
}

// === Handlers ===

func (s *Server) handleCreateSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	sessionID, sess, err := s.store.CreateSession(ctx)
	if err != nil {
		return nil, apiError(err)
	}
	s.logger.Debug("session created", "session_id", sessionID)
	return &SessionOutput{Body: sessionResponse(sessionID, sess)}, nil
}

func (s *Server) handleGetSession(ctx context.Context, input *SessionIDInput) (*SessionOutput, error) {
	sess, err := s.store.GetSession(ctx, input.ID)
	if err != nil {
		return nil, apiError(err)
	}
	return &SessionOutput{Body: sessionResponse(input.ID, sess)}, nil
}

func (s *Server) handleSubmit(ctx context.Context, input *SubmitInput) (*StepOutput, error) {
	return s.step(ctx, input.ID, func(sess *service.Session) (service.Outcome, error) {
		return sess.Submit(s.recommender, input.Body.Title)
	})
}

func (s *Server) handleAnother(ctx context.Context, input *AnotherInput) (*StepOutput, error) {
	var title string
	if input.Body != nil {
		title = input.Body.Title
	}
	return s.step(ctx, input.ID, func(sess *service.Session) (service.Outcome, error) {
		return sess.Another(s.recommender, title)
	})
}

func (s *Server) handleReset(ctx context.Context, input *SessionIDInput) (*SessionOutput, error) {
	sess, err := s.store.UpdateSession(ctx, input.ID, func(sess *service.Session) error {
		sess.Observe(recordTransition)
		sess.Reset()
		return nil
	})
	if err != nil {
		return nil, apiError(err)
	}
	return &SessionOutput{Body: sessionResponse(input.ID, sess)}, nil
}

func (s *Server) handleDeleteSession(ctx context.Context, input *SessionIDInput) (*struct{}, error) {
	if err := s.store.DeleteSession(ctx, input.ID); err != nil {
		return nil, apiError(err)
	}
	return &struct{}{}, nil
}

// step runs one state machine step against a stored session.
func (s *Server) step(ctx context.Context, sessionID string, fn func(*service.Session) (service.Outcome, error)) (*StepOutput, error) {
	var outcome service.Outcome
	sess, err := s.store.UpdateSession(ctx, sessionID, func(sess *service.Session) error {
		sess.Observe(recordTransition)
		var stepErr error
		outcome, stepErr = fn(sess)
		return stepErr
	})
	if err != nil {
		return nil, apiError(err)
	}

	resp := StepResponse{
		Status:  string(outcome.Status),
		Session: sessionResponse(sessionID, sess),
	}
	if outcome.Item != "" {
		item, err := s.summary(outcome.Item)
		if err != nil {
			return nil, apiError(err)
		}
		resp.Item = &item
	}
	return &StepOutput{Body: resp}, nil
}

func recordTransition(from, to service.State) {
	metrics.RecordSessionTransition(from.String(), to.String())
}

func sessionResponse(sessionID string, sess *service.Session) SessionResponse {
	return SessionResponse{
		ID:           sessionID,
		State:        sess.State.String(),
		Query:        sess.Query,
		Source:       string(sess.Source),
		Closest:      string(sess.Closest),
		Alternatives: len(sess.Alternatives),
		Cursor:       sess.Cursor,
		BuildID:      sess.BuildID,
	}
}

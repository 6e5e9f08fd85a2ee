package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"zetacore/app/client/speechkit"
	"zetacore/app/config"
	"zetacore/app/service/engine"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

// Server exposes the dialogue engine over HTTP. The voice endpoint is only
// registered when speech recognition is configured.
type Server struct {
	cfg    *config.Config
	engine *engine.Service
	speech *speechkit.Client
	app    *fiber.App
}

type chatRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
}

func New(di *do.Injector) (*Server, error) {
	s := &Server{
		cfg:    do.MustInvoke[*config.Config](di),
		engine: do.MustInvoke[*engine.Service](di),
	}

	// Voice support is optional, the client is only provided when a speech
	// key is configured.
	if speech, err := do.Invoke[*speechkit.Client](di); err == nil {
		s.speech = speech
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           time.Minute,
		BodyLimit:             16 * 1024 * 1024,
	})

	s.app.Post("/zeta/chat", s.handleChat)
	s.app.Get("/zeta/health", s.handleHealth)
	s.app.Get("/zeta/sessions", s.handleSessions)
	if s.speech != nil {
		s.app.Post("/zeta/voice", s.handleVoice)
	}

	return s, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		_ = s.app.ShutdownWithTimeout(10 * time.Second)
	}()

	slog.Info("HTTP API listening", "addr", s.cfg.Server.Addr)

	if err := s.app.Listen(s.cfg.Server.Addr); err != nil {
		slog.Error("HTTP server stopped", "error", err)
	}
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}
	if req.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "prompt is required"})
	}

	return s.respondTurn(c, req.SessionID, req.Prompt, "")
}

// handleVoice accepts raw PCM audio, transcribes it and runs the transcript
// through the same turn pipeline as chat. The session id travels in a
// header since the body is audio.
func (s *Server) handleVoice(c *fiber.Ctx) error {
	audio := c.Body()
	if len(audio) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "empty audio body"})
	}

	transcript, err := s.speech.Transcribe(c.Context(), audio)
	if err != nil {
		slog.Error("Transcription failed", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(errorResponse{Error: "speech recognition unavailable"})
	}
	if transcript == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "no speech recognized"})
	}

	return s.respondTurn(c, c.Get("X-Session-Id"), transcript, transcript)
}

type turnResponse struct {
	*engine.TurnResult
	// Transcript echoes what the recognizer heard on voice turns.
	Transcript string `json:"transcript,omitempty"`
}

func (s *Server) respondTurn(c *fiber.Ctx, sessionID, prompt, transcript string) error {
	result, err := s.engine.HandleTurn(c.Context(), sessionID, prompt)
	if err != nil {
		if action, ok := engine.IsCollaboratorUnavailable(err); ok {
			slog.Error("Collaborator unavailable", "action", action, "error", err)
			return c.Status(fiber.StatusBadGateway).JSON(errorResponse{
				Error:  "upstream service unavailable",
				Action: string(action),
			})
		}
		if errors.Is(err, context.Canceled) {
			return c.SendStatus(fiber.StatusRequestTimeout)
		}

		slog.Error("Turn failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "internal error"})
	}

	return c.JSON(turnResponse{TurnResult: result, Transcript: transcript})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleSessions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"sessions": s.engine.SessionIDs()})
}

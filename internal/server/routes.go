package server

import (
	"net/http"
	"strconv"

	"portfolio/internal/domain"
	"portfolio/internal/pricing"
	"portfolio/internal/services"
)

func (s *Server) mount() {
	s.handle(http.MethodGet, "/api/health", s.healthCheck)

	// Inquiry intake is reachable under both paths.
	s.handle(http.MethodPost, "/api/messages", s.submitMessage)
	s.handle(http.MethodPost, "/api/contact", s.submitMessage)
	s.handleAdmin(http.MethodGet, "/api/messages", s.listMessages)
	s.handleAdmin(http.MethodGet, "/api/messages/unread/count", s.unreadCount)
	s.handleAdmin(http.MethodPut, "/api/messages/{id}/read", s.markRead)
	s.handleAdmin(http.MethodDelete, "/api/messages/{id}", s.deleteMessage)

	s.handle(http.MethodPost, "/api/auth/login", s.login)
	s.handleAdmin(http.MethodGet, "/api/auth/verify", s.verify)
	s.handleAdmin(http.MethodPut, "/api/auth/password", s.changePassword)

	s.handle(http.MethodGet, "/api/profile", s.getProfile)
	s.handleAdmin(http.MethodPut, "/api/profile", s.updateProfile)

	mountCollection(s, "/api/skills", s.content.Skills)
	mountCollection(s, "/api/projects", s.content.Projects)
	mountCollection(s, "/api/experience", s.content.Experience)
	mountCollection(s, "/api/social", s.content.Social)
	s.handle(http.MethodGet, "/api/projects/featured", s.featuredProjects)
	s.handle(http.MethodGet, "/api/projects/{id}", getItem(s, s.content.Projects))
	s.handle(http.MethodGet, "/api/social/platforms", s.platforms)

	s.handle(http.MethodGet, "/api/pricing/catalog", s.pricingCatalog)
	s.handle(http.MethodPost, "/api/pricing/quote", s.pricingQuote)
}

func (s *Server) pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(s.mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, services.BadRequestError("Invalid id")
	}
	return uint(id), nil
}

func (s *Server) healthCheck(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	return http.StatusOK, s.health.Check(r.Context()), nil
}

// ============================================================
// Messages
// ============================================================

// SubmitResult is returned for an accepted inquiry.
type SubmitResult struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
}

func (s *Server) submitMessage(w http.ResponseWriter, r *http.Request) (int, any, error) {
	ip := s.clientIP(r)
	if err := s.contact.Admit(ip); err != nil {
		return 0, nil, err
	}
	var req services.SubmitRequest
	if err := decode(w, r, &req); err != nil {
		return 0, nil, err
	}
	req.ClientIP = ip

	msg, err := s.contact.Accept(r.Context(), &req)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, SubmitResult{Message: "Message sent successfully", ID: msg.ID}, nil
}

func (s *Server) listMessages(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	messages, err := s.contact.List(r.Context())
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, messages, nil
}

// CountResult carries the unread message count.
type CountResult struct {
	Count int64 `json:"count"`
}

func (s *Server) unreadCount(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	count, err := s.contact.UnreadCount(r.Context())
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, CountResult{Count: count}, nil
}

func (s *Server) markRead(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	id, err := s.pathID(r)
	if err != nil {
		return 0, nil, err
	}
	msg, err := s.contact.MarkRead(r.Context(), id)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, msg, nil
}

func (s *Server) deleteMessage(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	id, err := s.pathID(r)
	if err != nil {
		return 0, nil, err
	}
	if err := s.contact.Delete(r.Context(), id); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, MessageBody{Message: "Message deleted"}, nil
}

// ============================================================
// Auth
// ============================================================

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		return 0, nil, err
	}
	result, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, result, nil
}

// VerifyResult confirms a valid session.
type VerifyResult struct {
	Valid bool         `json:"valid"`
	User  *domain.User `json:"user"`
}

func (s *Server) verify(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	session, _ := services.SessionFrom(r.Context())
	user, err := s.auth.CurrentUser(r.Context(), session)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, VerifyResult{Valid: true, User: user}, nil
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var req changePasswordRequest
	if err := decode(w, r, &req); err != nil {
		return 0, nil, err
	}
	session, _ := services.SessionFrom(r.Context())
	if err := s.auth.ChangePassword(r.Context(), session, req.CurrentPassword, req.NewPassword); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, MessageBody{Message: "Password updated successfully"}, nil
}

// ============================================================
// Content
// ============================================================

func (s *Server) getProfile(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	profile, err := s.content.Profile(r.Context())
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, profile, nil
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) (int, any, error) {
	profile, err := s.content.UpdateProfile(r.Context(), func(p *domain.Profile) error {
		return decode(w, r, p)
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, profile, nil
}

func (s *Server) featuredProjects(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	projects, err := s.content.FeaturedProjects(r.Context())
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, projects, nil
}

// PlatformResult describes a supported social platform.
type PlatformResult struct {
	ID    domain.Platform `json:"id"`
	Label string          `json:"label"`
	Icon  string          `json:"icon"`
}

func (s *Server) platforms(_ http.ResponseWriter, _ *http.Request) (int, any, error) {
	var out []PlatformResult
	for _, p := range domain.Platforms() {
		info, _ := p.Info()
		out = append(out, PlatformResult{ID: p, Label: info.Label, Icon: info.Icon})
	}
	return http.StatusOK, out, nil
}

type reorderRequest struct {
	Items []services.OrderUpdate `json:"items"`
}

func mountCollection[T any, PT services.Item[T]](s *Server, base string, c *services.Collection[T, PT]) {
	s.handle(http.MethodGet, base, func(_ http.ResponseWriter, r *http.Request) (int, any, error) {
		items, err := c.List(r.Context())
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, items, nil
	})

	s.handleAdmin(http.MethodPost, base, func(w http.ResponseWriter, r *http.Request) (int, any, error) {
		item := PT(new(T))
		if err := decode(w, r, item); err != nil {
			return 0, nil, err
		}
		if err := c.Create(r.Context(), item); err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, item, nil
	})

	s.handleAdmin(http.MethodPut, base+"/reorder/batch", func(w http.ResponseWriter, r *http.Request) (int, any, error) {
		var req reorderRequest
		if err := decode(w, r, &req); err != nil {
			return 0, nil, err
		}
		if err := c.Reorder(r.Context(), req.Items); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, MessageBody{Message: "Order updated"}, nil
	})

	s.handleAdmin(http.MethodPut, base+"/{id}", func(w http.ResponseWriter, r *http.Request) (int, any, error) {
		id, err := s.pathID(r)
		if err != nil {
			return 0, nil, err
		}
		item, err := c.Update(r.Context(), id, func(p PT) error { return decode(w, r, p) })
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, item, nil
	})

	s.handleAdmin(http.MethodDelete, base+"/{id}", func(_ http.ResponseWriter, r *http.Request) (int, any, error) {
		id, err := s.pathID(r)
		if err != nil {
			return 0, nil, err
		}
		if err := c.Delete(r.Context(), id); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, MessageBody{Message: "Deleted successfully"}, nil
	})
}

func getItem[T any, PT services.Item[T]](s *Server, c *services.Collection[T, PT]) endpoint {
	return func(_ http.ResponseWriter, r *http.Request) (int, any, error) {
		id, err := s.pathID(r)
		if err != nil {
			return 0, nil, err
		}
		item, err := c.Get(r.Context(), id)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, item, nil
	}
}

// ============================================================
// Pricing
// ============================================================

// CurrencyResult describes a display currency.
type CurrencyResult struct {
	Code   string  `json:"code"`
	Symbol string  `json:"symbol"`
	Rate   float64 `json:"rate"`
}

// CatalogResult is the public pricing catalog.
type CatalogResult struct {
	Types           []pricing.ProjectType `json:"types"`
	BudgetBands     []string              `json:"budgetBands"`
	Currencies      []CurrencyResult      `json:"currencies"`
	DisplayCurrency string                `json:"displayCurrency"`
}

func (s *Server) pricingCatalog(_ http.ResponseWriter, _ *http.Request) (int, any, error) {
	result := CatalogResult{
		Types:           s.catalog.Types(),
		BudgetBands:     s.catalog.BudgetBands(),
		DisplayCurrency: s.cfg.Pricing.DisplayCurrency,
	}
	for _, c := range pricing.Currencies() {
		result.Currencies = append(result.Currencies, CurrencyResult{Code: c.Code, Symbol: c.Symbol, Rate: c.Rate})
	}
	return http.StatusOK, result, nil
}

// QuoteRequest selects a project type and features.
type QuoteRequest struct {
	TypeID   string   `json:"typeId"`
	Features []string `json:"features"`
}

// QuoteResult is a derived quote with display renderings per currency.
type QuoteResult struct {
	pricing.Quote
	Display map[string]string `json:"display"`
}

func (s *Server) pricingQuote(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var req QuoteRequest
	if err := decode(w, r, &req); err != nil {
		return 0, nil, err
	}
	t, ok := s.catalog.Type(req.TypeID)
	if !ok {
		return 0, nil, services.NotFoundError("Project type")
	}

	quote := pricing.Derive(t, req.Features)
	result := QuoteResult{Quote: quote, Display: map[string]string{}}
	for _, c := range pricing.Currencies() {
		result.Display[c.Code] = c.Format(quote.TotalPrice)
	}
	return http.StatusOK, result, nil
}

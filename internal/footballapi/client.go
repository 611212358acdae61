// Package footballapi é o client REST do backend do site de futebol.
// Todo request leva o token bearer do session.Store injetado.
package footballapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/football-betslip/internal/footballapi/dto"
	"github.com/radieske/football-betslip/internal/session"
)

// texto que o backend devolve (com HTTP 500) quando o token venceu
const tokenExpiredText = "Token has expired"

const maxBody = 1 << 20

var ErrTokenExpired = errors.New("session token has expired")

// APIError é uma resposta não-2xx ou com success=false
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("football api http %d: %s", e.Status, e.Message)
}

// UserMessage é o texto do backend, repassado sem interpretação
func (e *APIError) UserMessage() string { return e.Message }

type Client struct {
	BaseURL string
	HTTP    *http.Client
	// SessionTTL vale quando o login não informa expires_in
	SessionTTL time.Duration
	session    session.Store
	log        *zap.Logger
}

func New(base string, timeout time.Duration, s session.Store, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(base, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		session: s,
		log:     log,
	}
}

// WithSession devolve uma cópia do client usando outro Store (mesmo *http.Client)
func (c *Client) WithSession(s session.Store) *Client {
	cp := *c
	cp.session = s
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*dto.Envelope, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.session != nil {
		tok, err := c.session.Token(ctx)
		switch {
		case err == nil:
			req.Header.Set("Authorization", "Bearer "+tok)
		case errors.Is(err, session.ErrNoSession):
			// rotas públicas seguem sem header
		default:
			return nil, fmt.Errorf("read session token: %w", err)
		}
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	var env dto.Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if res.StatusCode == http.StatusInternalServerError && errorsText(env.Errors) == tokenExpiredText {
		if c.session != nil {
			if err := c.session.Clear(ctx); err != nil {
				c.log.Warn("clear expired session", zap.Error(err))
			}
		}
		return nil, ErrTokenExpired
	}

	if res.StatusCode >= 300 {
		msg := http.StatusText(res.StatusCode)
		if env.Message != nil && *env.Message != "" {
			msg = *env.Message
		}
		return nil, &APIError{Status: res.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, decodeErr)
	}
	return &env, nil
}

// into exige success=true e decodifica data em out
func into(env *dto.Envelope, status int, out any) error {
	if !env.Success {
		msg := "request failed"
		if env.Message != nil && *env.Message != "" {
			msg = *env.Message
		}
		return &APIError{Status: status, Message: msg}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func errorsText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Login grava o access_token no Store com o expires_in do backend
func (c *Client) Login(ctx context.Context, email, password string) (dto.LoginData, error) {
	env, err := c.do(ctx, http.MethodPost, "/login", nil, dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		return dto.LoginData{}, err
	}
	var out dto.LoginData
	if err := into(env, http.StatusOK, &out); err != nil {
		return dto.LoginData{}, err
	}
	if out.AccessToken == "" {
		return dto.LoginData{}, &APIError{Status: http.StatusOK, Message: "login returned no token"}
	}
	ttl := time.Duration(out.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = c.SessionTTL
	}
	if err := c.session.SetToken(ctx, out.AccessToken, ttl); err != nil {
		return dto.LoginData{}, fmt.Errorf("store session token: %w", err)
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, r dto.RegisterRequest) (dto.RegisterData, error) {
	env, err := c.do(ctx, http.MethodPost, "/register", nil, r)
	if err != nil {
		return dto.RegisterData{}, err
	}
	var out dto.RegisterData
	return out, into(env, http.StatusOK, &out)
}

// Logout só descarta o token local
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Clear(ctx)
}

func (c *Client) Balance(ctx context.Context) (decimal.Decimal, error) {
	env, err := c.do(ctx, http.MethodGet, "/balance", nil, nil)
	if err != nil {
		return decimal.Zero, err
	}
	var out dto.Balance
	if err := into(env, http.StatusOK, &out); err != nil {
		return decimal.Zero, err
	}
	return out.Balance, nil
}

func (c *Client) Deposit(ctx context.Context, amount int64, description string) error {
	return c.money(ctx, "/balance/deposit", amount, description)
}

func (c *Client) Withdraw(ctx context.Context, amount int64, description string) error {
	return c.money(ctx, "/balance/withdraw", amount, description)
}

func (c *Client) money(ctx context.Context, path string, amount int64, description string) error {
	env, err := c.do(ctx, http.MethodPost, path, nil, dto.MoneyRequest{Amount: amount, Description: description})
	if err != nil {
		return err
	}
	return into(env, http.StatusOK, nil)
}

func (c *Client) Transactions(ctx context.Context, limit int) (dto.TransactionPage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	env, err := c.do(ctx, http.MethodGet, "/balance/transactions", q, nil)
	if err != nil {
		return dto.TransactionPage{}, err
	}
	var out dto.TransactionPage
	return out, into(env, http.StatusOK, &out)
}

func (c *Client) Prediction(ctx context.Context, fixtureID int64) (dto.Prediction, error) {
	env, err := c.do(ctx, http.MethodGet, "/fixtures/predict/"+strconv.FormatInt(fixtureID, 10), nil, nil)
	if err != nil {
		return dto.Prediction{}, err
	}
	var out dto.PredictionData
	if err := into(env, http.StatusOK, &out); err != nil {
		return dto.Prediction{}, err
	}
	return out.Prediction, nil
}

func (c *Client) Fixture(ctx context.Context, fixtureID int64) (dto.FixtureDetail, error) {
	env, err := c.do(ctx, http.MethodGet, "/fixtures/"+strconv.FormatInt(fixtureID, 10), nil, nil)
	if err != nil {
		return dto.FixtureDetail{}, err
	}
	var out dto.FixtureDetail
	return out, into(env, http.StatusOK, &out)
}

// PlaceBet não transforma success=false em erro: quem decide é o slip
func (c *Client) PlaceBet(ctx context.Context, req dto.PlaceBetRequest) (dto.PlaceBetResponse, error) {
	env, err := c.do(ctx, http.MethodPost, "/betting/place-bet", nil, req)
	if err != nil {
		return dto.PlaceBetResponse{}, err
	}
	out := dto.PlaceBetResponse{Success: env.Success}
	if env.Message != nil {
		out.Message = *env.Message
	}
	return out, nil
}

func (c *Client) BettingHistory(ctx context.Context, page int) ([]dto.Bet, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{"page": {strconv.Itoa(page)}}
	env, err := c.do(ctx, http.MethodGet, "/betting/history", q, nil)
	if err != nil {
		return nil, err
	}
	var out []dto.Bet
	if err := into(env, http.StatusOK, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []dto.Bet{}
	}
	return out, nil
}

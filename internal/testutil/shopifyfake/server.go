// Package shopifyfake is an in-memory stand-in for the Shopify Admin API used by
// tests: GraphQL operations are answered by registered handlers and theme assets
// live in a map.
package shopifyfake

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/Muneebkh2/shopify-iframe-app/internal/config"
	"github.com/Muneebkh2/shopify-iframe-app/internal/domain"
)

const APIVersion = "2025-01"

// GraphQLCall is one recorded GraphQL request.
type GraphQLCall struct {
	Operation string
	Query     string
	Variables map[string]interface{}
	Token     string
}

// AssetCall is one recorded REST asset request.
type AssetCall struct {
	Method string
	Key    string
	Value  string
}

// GraphQLHandler answers one GraphQL operation with the value of "data".
type GraphQLHandler func(call GraphQLCall) (interface{}, error)

type Server struct {
	*httptest.Server

	mu           sync.Mutex
	themes       []domain.Theme
	assets       map[string]string // "themeID/key"
	gql          map[string]GraphQLHandler
	graphQLCalls []GraphQLCall
	assetCalls   []AssetCall
	failPut      map[string]int
	failDelete   map[string]int
	tokenReply   string
}

var (
	operationPattern = regexp.MustCompile(`(?:query|mutation)\s+(\w+)`)
	assetsPath       = regexp.MustCompile(`^/admin/api/[^/]+/themes/(\d+)/assets\.json$`)
)

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		assets:     make(map[string]string),
		gql:        make(map[string]GraphQLHandler),
		failPut:    make(map[string]int),
		failDelete: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// ShopifyConfig returns a client config pointed at the fake.
func (s *Server) ShopifyConfig(shop, token string) config.ShopifyConfig {
	return config.ShopifyConfig{
		ShopDomain:  shop,
		AccessToken: token,
		APIVersion:  APIVersion,
		BaseURL:     s.URL,
	}
}

func (s *Server) SetThemes(themes ...domain.Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.themes = themes
}

func (s *Server) SetAsset(themeID int64, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[assetID(themeID, key)] = value
}

// Asset returns the stored value and whether the asset exists.
func (s *Server) Asset(themeID int64, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.assets[assetID(themeID, key)]
	return v, ok
}

// FailPut makes PUTs of key answer with status.
func (s *Server) FailPut(key string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPut[key] = status
}

// FailDelete makes DELETEs of key answer with status.
func (s *Server) FailDelete(key string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDelete[key] = status
}

// HandleGraphQL registers h for the named operation (e.g. "metafieldsSet").
func (s *Server) HandleGraphQL(operation string, h GraphQLHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gql[operation] = h
}

// SetAccessTokenReply sets the token returned by /admin/oauth/access_token.
func (s *Server) SetAccessTokenReply(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenReply = token
}

func (s *Server) GraphQLCalls() []GraphQLCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]GraphQLCall(nil), s.graphQLCalls...)
}

func (s *Server) AssetCalls() []AssetCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AssetCall(nil), s.assetCalls...)
}

// Puts returns the recorded PUTs of key, oldest first.
func (s *Server) Puts(key string) []AssetCall {
	var out []AssetCall
	for _, c := range s.AssetCalls() {
		if c.Method == http.MethodPut && c.Key == key {
			out = append(out, c)
		}
	}
	return out
}

// RequestCount is the total number of requests served.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.graphQLCalls) + len(s.assetCalls)
}

func assetID(themeID int64, key string) string {
	return strconv.FormatInt(themeID, 10) + "/" + key
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/graphql.json") && r.Method == http.MethodPost:
		s.serveGraphQL(w, r)
	case strings.HasSuffix(r.URL.Path, "/themes.json") && r.Method == http.MethodGet:
		s.mu.Lock()
		themes := append([]domain.Theme{}, s.themes...)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"themes": themes})
	case assetsPath.MatchString(r.URL.Path):
		s.serveAsset(w, r)
	case r.URL.Path == "/admin/oauth/access_token" && r.Method == http.MethodPost:
		s.mu.Lock()
		token := s.tokenReply
		s.mu.Unlock()
		if token == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "scope": "read_products,write_themes"})
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) serveGraphQL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	call := GraphQLCall{
		Query:     req.Query,
		Variables: req.Variables,
		Token:     r.Header.Get("X-Shopify-Access-Token"),
	}
	if m := operationPattern.FindStringSubmatch(req.Query); m != nil {
		call.Operation = m[1]
	}

	s.mu.Lock()
	s.graphQLCalls = append(s.graphQLCalls, call)
	h := s.gql[call.Operation]
	s.mu.Unlock()

	if h == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"errors": []map[string]string{{"message": fmt.Sprintf("no fake handler for %q", call.Operation)}},
		})
		return
	}
	data, err := h(call)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"errors": []map[string]string{{"message": err.Error()}},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request) {
	themeID, _ := strconv.ParseInt(assetsPath.FindStringSubmatch(r.URL.Path)[1], 10, 64)

	switch r.Method {
	case http.MethodGet, http.MethodDelete:
		key := r.URL.Query().Get("asset[key]")
		s.mu.Lock()
		s.assetCalls = append(s.assetCalls, AssetCall{Method: r.Method, Key: key})
		value, ok := s.assets[assetID(themeID, key)]
		status := s.failDelete[key]
		if r.Method == http.MethodDelete && status == 0 && ok {
			delete(s.assets, assetID(themeID, key))
		}
		s.mu.Unlock()

		if r.Method == http.MethodDelete && status != 0 {
			writeJSON(w, status, map[string]string{"errors": "delete failed"})
			return
		}
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"errors": "Not Found"})
			return
		}
		if r.Method == http.MethodDelete {
			writeJSON(w, http.StatusOK, map[string]string{"message": key + " was succesfully deleted"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"asset": domain.Asset{Key: key, Value: value}})

	case http.MethodPut:
		raw, _ := io.ReadAll(r.Body)
		var body struct {
			Asset domain.Asset `json:"asset"`
		}
		if err := json.Unmarshal(raw, &body); err != nil || body.Asset.Key == "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"errors": "asset key required"})
			return
		}
		s.mu.Lock()
		s.assetCalls = append(s.assetCalls, AssetCall{Method: r.Method, Key: body.Asset.Key, Value: body.Asset.Value})
		status := s.failPut[body.Asset.Key]
		if status == 0 {
			s.assets[assetID(themeID, body.Asset.Key)] = body.Asset.Value
		}
		s.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]string{"errors": "put failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"asset": domain.Asset{Key: body.Asset.Key}})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

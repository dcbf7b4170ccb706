package videos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Search(ctx context.Context, query string) ([]Descriptor, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Descriptor), args.Error(1)
}

func newVideoServer(t *testing.T, provider Provider) *httptest.Server {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	ts := httptest.NewServer(NewServer(provider, log).Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestHandleSearch(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Search", mock.Anything, "lex fridman").Return([]Descriptor{
		{ID: "youtube-abc", Title: "Podcast", Type: "podcast", Platform: "youtube"},
	}, nil)

	ts := newVideoServer(t, provider)

	resp, err := http.Get(ts.URL + "/search?query=" + url.QueryEscape("lex fridman"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Items []Descriptor `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "youtube-abc", body.Items[0].ID)
	provider.AssertExpectations(t)
}

func TestHandleSearch_Validation(t *testing.T) {
	provider := new(MockProvider)
	ts := newVideoServer(t, provider)

	tests := []struct {
		name  string
		query string
	}{
		{"missing query", ""},
		{"blank query", "query=" + url.QueryEscape("  ")},
		{"query too long", "query=" + strings.Repeat("x", 201)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/search?" + tc.query)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
	provider.AssertNotCalled(t, "Search")
}

func TestHandleSearch_ProviderError(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Search", mock.Anything, "lex").Return(nil, errors.New("quota exceeded"))

	ts := newVideoServer(t, provider)

	resp, err := http.Get(ts.URL + "/search?query=lex")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "failed to query video provider", body["error"])
}

//go:build integration_test || all_tests

package internal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/blogservice/internal/blog"
	"github.com/2beens/blogservice/internal/messages"
	"github.com/2beens/blogservice/internal/middleware"
)

func (s *IntegrationTestSuite) doRequest(
	ctx context.Context,
	method, path, authToken string,
	body any,
) (int, []byte) {
	t := s.T()

	var bodyReader io.Reader
	if body != nil {
		bodyJson, err := json.Marshal(body)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(bodyJson)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, bodyReader)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authToken != "" {
		req.Header.Set(middleware.AuthTokenHeader, authToken)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) registerAndLogin(ctx context.Context, t *testing.T) string {
	creds := map[string]string{
		"username": gofakeit.Username() + gofakeit.DigitN(5),
		"password": gofakeit.Password(true, true, true, false, false, 12),
	}

	status, body := s.doRequest(ctx, http.MethodPost, "/a/register", "", creds)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = s.doRequest(ctx, http.MethodPost, "/a/login", "", creds)
	require.Equal(t, http.StatusOK, status, string(body))

	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &loginResp))
	require.NotEmpty(t, loginResp.Token)

	return loginResp.Token
}

func (s *IntegrationTestSuite) createBlog(ctx context.Context, t *testing.T, token string, fields blog.Fields) *blog.Blog {
	status, body := s.doRequest(ctx, http.MethodPost, "/blog", token, fields)
	require.Equal(t, http.StatusCreated, status, string(body))

	var created blog.Blog
	require.NoError(t, json.Unmarshal(body, &created))
	return &created
}

func randomFields() blog.Fields {
	return blog.Fields{
		Title:       gofakeit.Sentence(3),
		Description: gofakeit.Sentence(8),
		Article:     gofakeit.Paragraph(2, 3, 10, " "),
	}
}

func (s *IntegrationTestSuite) TestHelloWorld() {
	status, body := s.doRequest(context.Background(), http.MethodGet, "/test", "", nil)
	s.Equal(http.StatusOK, status)
	s.JSONEq(`{"message":"hello world"}`, string(body))
}

func (s *IntegrationTestSuite) TestBlogLifecycle() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	ownerToken := s.registerAndLogin(ctx, t)
	otherToken := s.registerAndLogin(ctx, t)

	fields := randomFields()
	fields.Title = "  " + fields.Title + "  "
	created := s.createBlog(ctx, t, ownerToken, fields)

	t.Run("created blog is unverified and trimmed", func(t *testing.T) {
		assert.Positive(t, created.ID)
		assert.False(t, created.Verified)
		assert.Equal(t, fields.Trimmed().Title, created.Title)
	})

	blogPath := fmt.Sprintf("/blog/%d", created.ID)

	t.Run("create without token", func(t *testing.T) {
		status, body := s.doRequest(ctx, http.MethodPost, "/blog", "", randomFields())
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Contains(t, string(body), string(messages.Unauthorized))
	})

	t.Run("create with missing fields", func(t *testing.T) {
		status, body := s.doRequest(ctx, http.MethodPost, "/blog", ownerToken, map[string]string{"title": "only title"})
		require.Equal(t, http.StatusBadRequest, status)

		var resp messages.ErrorResponse
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.Equal(t, messages.ValidationFailed, resp.MessageID)
		assert.ElementsMatch(t, []string{"description", "article"}, resp.Fields)
	})

	t.Run("unverified blog not listed", func(t *testing.T) {
		status, body := s.doRequest(ctx, http.MethodGet, "/blog", "", nil)
		require.Equal(t, http.StatusOK, status)

		var page blog.Page
		require.NoError(t, json.Unmarshal(body, &page))
		for _, b := range page.Data {
			assert.NotEqual(t, created.ID, b.ID)
		}
	})

	t.Run("unverified blog visible only to owner", func(t *testing.T) {
		status, _ := s.doRequest(ctx, http.MethodGet, blogPath, ownerToken, nil)
		assert.Equal(t, http.StatusOK, status)

		status, _ = s.doRequest(ctx, http.MethodGet, blogPath, otherToken, nil)
		assert.Equal(t, http.StatusForbidden, status)

		status, _ = s.doRequest(ctx, http.MethodGet, blogPath, "", nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("missing blog", func(t *testing.T) {
		status, body := s.doRequest(ctx, http.MethodGet, "/blog/999999", ownerToken, nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Contains(t, string(body), string(messages.BlogNotFound))
	})

	t.Run("owner updates unverified blog", func(t *testing.T) {
		newFields := randomFields()
		status, body := s.doRequest(ctx, http.MethodPut, blogPath, ownerToken, newFields)
		require.Equal(t, http.StatusOK, status, string(body))

		var updated blog.Blog
		require.NoError(t, json.Unmarshal(body, &updated))
		assert.Equal(t, newFields.Title, updated.Title)
		assert.Equal(t, created.ID, updated.ID)
		assert.False(t, updated.Verified)
	})

	t.Run("other user cannot update", func(t *testing.T) {
		status, _ := s.doRequest(ctx, http.MethodPut, blogPath, otherToken, randomFields())
		assert.Equal(t, http.StatusForbidden, status)
	})

	_, err := blog.NewRepo(s.dbPool).SetVerified(ctx, created.ID)
	require.NoError(t, err)

	t.Run("verified blog is public and listed", func(t *testing.T) {
		status, _ := s.doRequest(ctx, http.MethodGet, blogPath, "", nil)
		assert.Equal(t, http.StatusOK, status)

		status, body := s.doRequest(ctx, http.MethodGet, "/blog", "", nil)
		require.Equal(t, http.StatusOK, status)

		var page blog.Page
		require.NoError(t, json.Unmarshal(body, &page))
		assert.Equal(t, 1, page.CurrentPage)
		assert.Positive(t, page.Total)
		found := false
		for _, b := range page.Data {
			if b.ID == created.ID {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("verified blog cannot be updated", func(t *testing.T) {
		status, _ := s.doRequest(ctx, http.MethodPut, blogPath, ownerToken, randomFields())
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("logout invalidates token", func(t *testing.T) {
		status, _ := s.doRequest(ctx, http.MethodGet, "/a/logout", ownerToken, nil)
		require.Equal(t, http.StatusOK, status)

		status, _ = s.doRequest(ctx, http.MethodPost, "/blog", ownerToken, randomFields())
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func (s *IntegrationTestSuite) TestBlogPagination() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	token := s.registerAndLogin(ctx, t)
	ids := make([]int, 0, blog.DefaultPageSize+5)
	for i := 0; i < blog.DefaultPageSize+5; i++ {
		ids = append(ids, s.createBlog(ctx, t, token, randomFields()).ID)
	}
	_, err := blog.NewRepo(s.dbPool).SetVerified(ctx, ids...)
	require.NoError(t, err)

	status, body := s.doRequest(ctx, http.MethodGet, "/blog?page=2", "", nil)
	require.Equal(t, http.StatusOK, status)

	var page blog.Page
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, blog.DefaultPageSize, page.PerPage)
	assert.GreaterOrEqual(t, page.Total, blog.DefaultPageSize+5)
	require.NotNil(t, page.PrevPageURL)
	assert.Contains(t, *page.PrevPageURL, "page=1")
	assert.NotEmpty(t, page.Data)
}

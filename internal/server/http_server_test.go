package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/spark-match/internal/app"
	"github.com/oggyb/spark-match/internal/config"
	"github.com/oggyb/spark-match/internal/server"
	"github.com/oggyb/spark-match/internal/service/account"
	"github.com/oggyb/spark-match/internal/service/chat"
	"github.com/oggyb/spark-match/internal/service/match"
	"github.com/oggyb/spark-match/internal/service/profile"
	"github.com/oggyb/spark-match/internal/service/swipe"
	"github.com/oggyb/spark-match/internal/testutil"
)

func init() { gin.SetMode(gin.TestMode) }

type api struct {
	t      *testing.T
	router *gin.Engine
	appCtx *app.AppContext
}

func newAPI(t *testing.T) *api {
	t.Helper()
	appCtx, _ := testutil.AppContext(t)
	cfg := &config.Config{}
	cfg.App.Name = "spark-test"

	router := server.NewRouter(cfg, appCtx,
		account.NewRegistrar(appCtx),
		profile.NewRegistrar(appCtx),
		swipe.NewRegistrar(appCtx),
		match.NewRegistrar(appCtx),
		chat.NewRegistrar(appCtx),
	)
	return &api{t: t, router: router, appCtx: appCtx}
}

func (a *api) token(userID uint64) string {
	tok, err := a.appCtx.Tokens.Issue(userID)
	require.NoError(a.t, err)
	return tok
}

// do sends body as JSON and decodes the response into out when non-nil.
func (a *api) do(method, path string, userID uint64, body any, out any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+a.token(userID))
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if out != nil {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w
}

type matchJSON struct {
	ID        uint64 `json:"id"`
	MatchID   uint64 `json:"matchId"`
	MatchedAt string `json:"matchedAt"`
	Name      string `json:"name"`
	Age       *int   `json:"age"`
	UserID    uint64 `json:"userId"`
}

func TestScenario_MatchChatUnmatch(t *testing.T) {
	a := newAPI(t)

	// user1 → user2 is seeded; user2 likes back
	var swiped struct {
		Match       bool `json:"match"`
		MatchRecord struct {
			ID      uint64 `json:"id"`
			UserAID uint64 `json:"userAId"`
			UserBID uint64 `json:"userBId"`
		} `json:"matchRecord"`
	}
	w := a.do(http.MethodPost, "/swipe", 2, gin.H{"toUserId": 1, "direction": "like"}, &swiped)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, swiped.Match)
	assert.EqualValues(t, 1, swiped.MatchRecord.UserAID)
	assert.EqualValues(t, 2, swiped.MatchRecord.UserBID)
	matchID := swiped.MatchRecord.ID

	for _, u := range []struct{ caller, other uint64 }{{1, 2}, {2, 1}} {
		var list []matchJSON
		w = a.do(http.MethodGet, "/matches", u.caller, nil, &list)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, list, 1)
		assert.Equal(t, matchID, list[0].MatchID)
		assert.Equal(t, u.other, list[0].UserID)
	}

	var created struct {
		Created int `json:"created"`
	}
	w = a.do(http.MethodPost, "/chat/messages", 1, gin.H{
		"matchId":  matchID,
		"messages": []gin.H{{"content": "hi", "user": gin.H{"name": "User1"}}},
	}, &created)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, created.Created)

	var listed struct {
		Messages []chat.Message `json:"messages"`
	}
	chatPath := fmt.Sprintf("/chat/messages?matchId=%d", matchID)
	w = a.do(http.MethodGet, chatPath, 2, nil, &listed)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, listed.Messages, 1)
	assert.Equal(t, "hi", listed.Messages[0].Content)
	assert.Equal(t, "User1", listed.Messages[0].User.Name)

	// outsiders are forbidden on every match operation
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, chatPath, 3, nil, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/chat/messages", 3,
		gin.H{"matchId": matchID, "messages": []gin.H{{"content": "x"}}}, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, fmt.Sprintf("/matches/%d", matchID), 3, nil, nil).Code)

	var ok struct {
		Success bool `json:"success"`
	}
	w = a.do(http.MethodDelete, fmt.Sprintf("/matches/%d", matchID), 2, nil, &ok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, ok.Success)

	for _, u := range []uint64{1, 2} {
		var list []matchJSON
		w = a.do(http.MethodGet, "/matches", u, nil, &list)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, list)

		w = a.do(http.MethodGet, chatPath, u, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, fmt.Sprintf("/matches/%d", matchID), 1, nil, nil).Code)
}

func TestSwipe_InvalidInput(t *testing.T) {
	a := newAPI(t)

	for name, body := range map[string]any{
		"string id":     gin.H{"toUserId": "2", "direction": "like"},
		"fractional id": gin.H{"toUserId": 2.5, "direction": "like"},
		"missing id":    gin.H{"direction": "like"},
		"bad direction": gin.H{"toUserId": 2, "direction": "maybe"},
		"self":          gin.H{"toUserId": 1, "direction": "like"},
	} {
		t.Run(name, func(t *testing.T) {
			var e struct {
				Message string `json:"message"`
				Code    string `json:"code"`
			}
			w := a.do(http.MethodPost, "/swipe", 1, body, &e)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "invalid_argument", e.Code)
		})
	}

	var e map[string]string
	w := a.do(http.MethodPost, "/swipe", 1, gin.H{"toUserId": 77, "direction": "like"}, &e)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", e["message"])
}

func TestChatMessages_LimitParam(t *testing.T) {
	a := newAPI(t)

	var swiped struct {
		MatchRecord struct {
			ID uint64 `json:"id"`
		} `json:"matchRecord"`
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/swipe", 2, gin.H{"toUserId": 1, "direction": "like"}, &swiped).Code)
	matchID := swiped.MatchRecord.ID

	w := a.do(http.MethodPost, "/chat/messages", 1, gin.H{
		"matchId": matchID,
		"messages": []gin.H{
			{"content": "a", "createdAt": "2025-01-01T10:00:00.000Z"},
			{"content": "b", "createdAt": "2025-01-01T10:01:00.000Z"},
			{"content": "c", "createdAt": "2025-01-01T10:02:00.000Z"},
		},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	for query, want := range map[string]int{
		"":           3,
		"&limit=abc": 3,
		"&limit=2":   2,
		"&limit=0":   1,
		"&limit=-5":  1,
	} {
		var listed struct {
			Messages []chat.Message `json:"messages"`
		}
		w = a.do(http.MethodGet, fmt.Sprintf("/chat/messages?matchId=%d%s", matchID, query), 1, nil, &listed)
		require.Equal(t, http.StatusOK, w.Code, query)
		assert.Len(t, listed.Messages, want, query)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newAPI(t)

	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/swipe"},
		{http.MethodGet, "/swipe/next"},
		{http.MethodGet, "/matches"},
		{http.MethodDelete, "/matches/1"},
		{http.MethodGet, "/liked-me"},
		{http.MethodGet, "/liked-me/count"},
		{http.MethodPost, "/chat/messages"},
		{http.MethodGet, "/chat/messages?matchId=1"},
		{http.MethodGet, "/users/profile"},
		{http.MethodPatch, "/users/profile"},
	} {
		var e map[string]string
		w := a.do(r.method, r.path, 0, nil, &e)
		assert.Equal(t, http.StatusUnauthorized, w.Code, r.path)
		assert.Equal(t, "Unauthorized", e["message"], r.path)
	}
}

func TestNextCandidate_HTTP(t *testing.T) {
	a := newAPI(t)

	var cand struct {
		ID   uint64 `json:"id"`
		Done bool   `json:"done"`
	}
	w := a.do(http.MethodGet, "/swipe/next?ageMin=abc", 1, nil, &cand)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, cand.ID)

	var done struct {
		Done        bool `json:"done"`
		FilteredOut bool `json:"filteredOut"`
	}
	w = a.do(http.MethodGet, "/swipe/next?ageMin=20&ageMax=40", 1, nil, &done)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, done.Done)
	assert.True(t, done.FilteredOut)
}

func TestLikedMe_HTTP(t *testing.T) {
	a := newAPI(t)
	a.do(http.MethodPost, "/swipe", 4, gin.H{"toUserId": 1, "direction": "like"}, nil)

	var page []struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	}
	w := a.do(http.MethodGet, "/liked-me?limit=1", 1, nil, &page)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, page, 1)
	assert.EqualValues(t, 4, page[0].ID)

	cursor := w.Header().Get(swipe.HeaderNextCursor)
	require.NotEmpty(t, cursor)
	w = a.do(http.MethodGet, "/liked-me?limit=1&cursor="+cursor, 1, nil, &page)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, page, 1)
	assert.EqualValues(t, 3, page[0].ID)

	// no paging parameters: the whole list, no cursor
	w = a.do(http.MethodGet, "/liked-me", 1, nil, &page)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, page, 2)
	assert.Empty(t, w.Header().Get(swipe.HeaderNextCursor))

	var count struct {
		Count int64 `json:"count"`
	}
	w = a.do(http.MethodGet, "/liked-me/count", 1, nil, &count)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, count.Count)
}

func TestAuthAndProfile_HTTP(t *testing.T) {
	a := newAPI(t)

	var sess account.Session
	w := a.do(http.MethodPost, "/auth/signup", 0, gin.H{"email": "fresh@test.com", "password": "pw"}, &sess)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, sess.AccessToken)

	w = a.do(http.MethodPost, "/auth/signup", 0, gin.H{"email": "fresh@test.com", "password": "pw"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/auth/login", 0, gin.H{"email": "fresh@test.com", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/auth/login", 0, gin.H{"email": "fresh@test.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var p profile.Profile
	w = a.do(http.MethodPatch, "/users/profile", sess.User.ID, gin.H{
		"name":    "Fresh",
		"age":     "not a number", // ignored
		"hobbies": []string{"tea"},
	}, &p)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Fresh", p.Name)
	assert.Nil(t, p.Age)
	assert.Equal(t, []string{"tea"}, p.Hobbies)

	w = a.do(http.MethodGet, "/users/profile", sess.User.ID, nil, &p)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fresh@test.com", p.Email)

	w = a.do(http.MethodGet, "/users/profile", 999, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthz(t *testing.T) {
	a := newAPI(t)
	var body map[string]string
	w := a.do(http.MethodGet, "/healthz", 0, nil, &body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

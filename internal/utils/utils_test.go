package utils

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/where2watch/internal/apperror"
)

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[string](2, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("a", "1")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewTTLCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestRemember(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)
	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}

	v, err := Remember(c, "k", 0, load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	v, err = Remember(c, "k", 0, load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	_, err = Remember(c, "fail", 0, func() (int, error) { return 0, errors.New("boom") })
	assert.Error(t, err)
	_, ok := c.Get("fail")
	assert.False(t, ok)
}

func TestGetJSONHandlesGzipAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		json.NewEncoder(zw).Encode(map[string]string{"title": "Inception"})
		zw.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	client := NewHTTPClient(time.Second)
	header := http.Header{"Authorization": []string{"Bearer t"}}

	var out struct {
		Title string `json:"title"`
	}
	require.NoError(t, client.GetJSON(context.Background(), srv.URL+"/ok", header, &out))
	assert.Equal(t, "Inception", out.Title)

	err := client.GetJSON(context.Background(), srv.URL+"/missing", header, &out)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err     error
		code    int
		message string
	}{
		{apperror.Validation("op", "标题不能为空"), http.StatusBadRequest, "标题不能为空"},
		{apperror.NotFound("op", "内容不存在"), http.StatusNotFound, "内容不存在"},
		{apperror.Unauthorized("op", "PIN 错误"), http.StatusUnauthorized, "PIN 错误"},
		{apperror.ExternalAPI("op", "TMDB 不可用", errors.New("timeout")), http.StatusBadGateway, "TMDB 不可用"},
		{apperror.Storage("op", "写入失败", errors.New("dsn secret")), http.StatusInternalServerError, "服务器内部错误"},
		{errors.New("plain"), http.StatusInternalServerError, "服务器内部错误"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		RespondError(c, tc.err)

		assert.Equal(t, tc.code, w.Code)
		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, tc.message, resp.Message)
	}
}

func TestHashIP(t *testing.T) {
	assert.Len(t, HashIP("127.0.0.1"), 16)
	assert.Equal(t, HashIP("10.0.0.1"), HashIP("10.0.0.1"))
	assert.NotEqual(t, HashIP("10.0.0.1"), HashIP("10.0.0.2"))
}

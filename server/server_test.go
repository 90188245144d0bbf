package server

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/akorolkov/postline/app_setting"
	"github.com/akorolkov/postline/cache"
	"github.com/akorolkov/postline/imagestore"
	"github.com/akorolkov/postline/model"
	"github.com/akorolkov/postline/store"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	store  *store.MemoryStore
	images *imagestore.FakeImageStore
	pages  *cache.MemoryCache
}

func newTestEnv(t *testing.T, setting app_setting.ServerAppSetting) *testEnv {
	t.Helper()
	memStore := store.NewMemoryStore()
	images := imagestore.NewFakeImageStore()
	pages := cache.NewMemoryCache(time.Minute)
	srv := New(memStore, images, pages, setting)
	return &testEnv{
		router: srv.Router("../templates/*.html"),
		store:  memStore,
		images: images,
		pages:  pages,
	}
}

func defaultTestEnv(t *testing.T) *testEnv {
	setting := app_setting.DefaultServerAppSetting()
	setting.MEDIA_ROOT = ""
	return newTestEnv(t, setting)
}

// client replays cookies across requests, standing in for one browser
// session.
type client struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, env *testEnv) *client {
	return &client{t: t, router: env.router, cookies: make(map[string]*http.Cookie)}
}

func (c *client) request(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.request(http.MethodGet, target, nil, "")
}

func (c *client) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	return c.request(http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

// signup registers and logs in a fresh user through the real handlers.
func (c *client) signup(username string) {
	c.t.Helper()
	w := c.postForm("/auth/signup/", url.Values{
		"username":         {username},
		"password":         {"secret"},
		"password_confirm": {"secret"},
	})
	require.Equal(c.t, http.StatusFound, w.Code)
	require.Equal(c.t, "/", w.Header().Get("Location"))
}

// lastPost returns the newest post in the store.
func lastPost(t *testing.T, env *testEnv) *model.Post {
	t.Helper()
	posts, err := env.store.ListPosts(context.Background(), store.PostFilter{}, 0, 1)
	require.NoError(t, err)
	require.NotEmpty(t, posts)
	return &posts[0]
}

func TestLoginRequiredRedirectsWithNext(t *testing.T) {
	env := defaultTestEnv(t)
	c := newClient(t, env)

	w := c.get("/create/")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/auth/login/?next="+url.QueryEscape("/create/"), w.Header().Get("Location"))

	w = c.get("/follow/")
	require.Equal(t, http.StatusFound, w.Code)
	require.Contains(t, w.Header().Get("Location"), "/auth/login/?next=")
}

func TestLoginHonorsNext(t *testing.T) {
	env := defaultTestEnv(t)
	c := newClient(t, env)
	c.signup("auth")
	c.get("/auth/logout/")

	w := c.postForm("/auth/login/", url.Values{
		"username": {"auth"},
		"password": {"secret"},
		"next":     {"/create/"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/create/", w.Header().Get("Location"))

	// Logged in again: the gated page renders now.
	w = c.get("/create/")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := defaultTestEnv(t)
	c := newClient(t, env)
	c.signup("auth")
	c.get("/auth/logout/")

	w := c.postForm("/auth/login/", url.Values{
		"username": {"auth"},
		"password": {"wrong"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Неверное имя пользователя или пароль!")

	w = c.get("/create/")
	require.Equal(t, http.StatusFound, w.Code)
}

func TestCreatePostIncrementsCountAndRedirects(t *testing.T) {
	ctx := context.Background()
	env := defaultTestEnv(t)
	c := newClient(t, env)
	c.signup("auth")

	before, err := env.store.CountPosts(ctx, store.PostFilter{})
	require.NoError(t, err)

	w := c.postForm("/create/", url.Values{"text": {"Тестовый текст"}})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/profile/auth/", w.Header().Get("Location"))

	after, err := env.store.CountPosts(ctx, store.PostFilter{})
	require.NoError(t, err)
	require.Equal(t, before+1, after)

	posts, err := env.store.ListPosts(ctx, store.PostFilter{}, 0, 1)
	require.NoError(t, err)
	require.Equal(t, "Тестовый текст", posts[0].Text)
	require.Nil(t, posts[0].GroupID)
}

func TestCreatePostWithGroupAndImage(t *testing.T) {
	ctx := context.Background()
	env := defaultTestEnv(t)
	group := &model.Group{Title: "Коты", Slug: "cats"}
	require.NoError(t, env.store.CreateGroup(ctx, group))

	c := newClient(t, env)
	c.signup("auth")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("text", "пост с картинкой"))
	require.NoError(t, mw.WriteField("group", "1"))
	fw, err := mw.CreateFormFile("image", "cat.gif")
	require.NoError(t, err)
	_, err = fw.Write([]byte("GIF89a fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := c.request(http.MethodPost, "/create/", &body, mw.FormDataContentType())
	require.Equal(t, http.StatusFound, w.Code)

	posts, err := env.store.ListPosts(ctx, store.PostFilter{}, 0, 1)
	require.NoError(t, err)
	post := posts[0]
	require.Equal(t, "пост с картинкой", post.Text)
	require.NotNil(t, post.GroupID)
	require.Equal(t, group.ID, *post.GroupID)
	require.NotEmpty(t, post.ImageKey)
	require.Contains(t, env.images.Saved, post.ImageKey)

	// Group feed picks it up.
	w = newClient(t, env).get("/group/cats/")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "пост с картинкой")
}

// brokenImageStore fails every upload, standing in for an unreachable blob
// backend.
type brokenImageStore struct{}

func (brokenImageStore) Save(r io.Reader, scope string, fileName string) (string, error) {
	return "", errors.New("blob store unavailable")
}

func (brokenImageStore) URL(key string) string { return "/media/" + key }

func TestCreatePostImageStoreFailure(t *testing.T) {
	setting := app_setting.DefaultServerAppSetting()
	setting.MEDIA_ROOT = ""
	memStore := store.NewMemoryStore()
	srv := New(memStore, brokenImageStore{}, cache.NewMemoryCache(time.Minute), setting)
	c := &client{t: t, router: srv.Router("../templates/*.html"), cookies: make(map[string]*http.Cookie)}
	c.signup("auth")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("text", "пост с картинкой"))
	fw, err := mw.CreateFormFile("image", "cat.gif")
	require.NoError(t, err)
	_, err = fw.Write([]byte("GIF89a fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	// A failing upload is a request failure, not a success redirect to a
	// silently image-less post.
	w := c.request(http.MethodPost, "/create/", &body, mw.FormDataContentType())
	require.Equal(t, http.StatusInternalServerError, w.Code)

	// Posts without an image never touch the image store and still go
	// through.
	w = c.postForm("/create/", url.Values{"text": {"без картинки"}})
	require.Equal(t, http.StatusFound, w.Code)
}

func TestCreatePostValidationError(t *testing.T) {
	ctx := context.Background()
	env := defaultTestEnv(t)
	c := newClient(t, env)
	c.signup("auth")

	w := c.postForm("/create/", url.Values{"text": {"   "}})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Введите текст поста!")

	count, err := env.store.CountPosts(ctx, store.PostFilter{})
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestProfileShowsNewestPostFirst(t *testing.T) {
	env := defaultTestEnv(t)
	c := newClient(t, env)
	c.signup("auth")

	c.postForm("/create/", url.Values{"text": {"старый пост"}})
	c.postForm("/create/", url.Values{"text": {"Тестовый текст"}})

	w := c.get("/profile/auth/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "Тестовый текст")
	require.Contains(t, body, "старый пост")
	require.Less(t, strings.Index(body, "Тестовый текст"), strings.Index(body, "старый пост"))
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	env := defaultTestEnv(t)
	c := newClient(t, env)
	c.signup("auth")
	c.postForm("/create/", url.Values{"text": {"пост"}})

	posts, err := env.store.ListPosts(ctx, store.PostFilter{}, 0, 1)
	require.NoError(t, err)
	postID := posts[0].ID
	detailURL := "/posts/" + strconv.FormatUint(uint64(postID), 10) + "/"

	w := c.postForm(detailURL+"comment/", url.Values{"text": {"отличный пост"}})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, detailURL, w.Header().Get("Location"))

	comments, err := env.store.CommentsByPost(ctx, postID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, "отличный пост", comments[0].Text)
	require.Equal(t, "auth", comments[0].Author.Username)

	// Empty comment is dropped silently: same redirect, no new record.
	w = c.postForm(detailURL+"comment/", url.Values{"text": {"  "}})
	require.Equal(t, http.StatusFound, w.Code)
	comments, err = env.store.CommentsByPost(ctx, postID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	// Detail page renders the comment.
	w = c.get(detailURL)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "отличный пост")
}

func TestCommentOnMissingPostIs404(t *testing.T) {
	env := defaultTestEnv(t)
	c := newClient(t, env)
	c.signup("auth")

	w := c.postForm("/posts/999/comment/", url.Values{"text": {"эй"}})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowUnfollowFlow(t *testing.T) {
	ctx := context.Background()
	env := defaultTestEnv(t)

	b := newClient(t, env)
	b.signup("author")
	b.postForm("/create/", url.Values{"text": {"пост автора"}})

	a := newClient(t, env)
	a.signup("reader")

	// Before following: personalized feed is empty.
	w := a.get("/follow/")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "пост автора")

	w = a.get("/profile/author/follow/")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/profile/author/", w.Header().Get("Location"))

	w = a.get("/follow/")
	require.Contains(t, w.Body.String(), "пост автора")

	// Following twice keeps a single edge.
	a.get("/profile/author/follow/")
	reader, err := env.store.UserByUsername(ctx, "reader")
	require.NoError(t, err)
	author, err := env.store.UserByUsername(ctx, "author")
	require.NoError(t, err)
	require.Equal(t, 1, env.store.FollowCount(reader.ID, author.ID))

	// Unfollow drops the post from the feed; a second unfollow is a no-op.
	a.get("/profile/author/unfollow/")
	a.get("/profile/author/unfollow/")
	require.Equal(t, 0, env.store.FollowCount(reader.ID, author.ID))

	require.NoError(t, env.pages.Clear(ctx))
	w = a.get("/follow/")
	require.NotContains(t, w.Body.String(), "пост автора")
}

func TestSelfFollowIsRejectedSilently(t *testing.T) {
	ctx := context.Background()
	env := defaultTestEnv(t)
	c := newClient(t, env)
	c.signup("auth")

	w := c.get("/profile/auth/follow/")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/profile/auth/", w.Header().Get("Location"))

	user, err := env.store.UserByUsername(ctx, "auth")
	require.NoError(t, err)
	require.Equal(t, 0, env.store.FollowCount(user.ID, user.ID))

	w = c.get("/profile/auth/unfollow/")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, 0, env.store.FollowCount(user.ID, user.ID))
}

func TestFollowUnknownUserIs404(t *testing.T) {
	env := defaultTestEnv(t)
	c := newClient(t, env)
	c.signup("auth")

	w := c.get("/profile/nobody/follow/")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditPostRestrictedToAuthor(t *testing.T) {
	ctx := context.Background()
	env := defaultTestEnv(t)

	author := newClient(t, env)
	author.signup("author")
	author.postForm("/create/", url.Values{"text": {"оригинал"}})
	postID := lastPost(t, env).ID
	detailURL := postDetailURL(postID)

	// The author edits their own post.
	w := author.postForm(detailURL+"edit/", url.Values{"text": {"исправлено"}})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, detailURL, w.Header().Get("Location"))
	post, err := env.store.PostByID(ctx, postID)
	require.NoError(t, err)
	require.Equal(t, "исправлено", post.Text)

	// Someone else is bounced to the detail page with no change.
	other := newClient(t, env)
	other.signup("other")
	w = other.postForm(detailURL+"edit/", url.Values{"text": {"взлом"}})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, detailURL, w.Header().Get("Location"))
	post, err = env.store.PostByID(ctx, postID)
	require.NoError(t, err)
	require.Equal(t, "исправлено", post.Text)
}

func TestEditPostLegacyPolicyAllowsAnyUser(t *testing.T) {
	ctx := context.Background()
	setting := app_setting.DefaultServerAppSetting()
	setting.MEDIA_ROOT = ""
	setting.RESTRICT_POST_EDIT_TO_AUTHOR = false
	env := newTestEnv(t, setting)

	author := newClient(t, env)
	author.signup("author")
	author.postForm("/create/", url.Values{"text": {"оригинал"}})
	postID := lastPost(t, env).ID

	other := newClient(t, env)
	other.signup("other")
	w := other.postForm(postDetailURL(postID)+"edit/", url.Values{"text": {"чужая правка"}})
	require.Equal(t, http.StatusFound, w.Code)

	post, err := env.store.PostByID(ctx, postID)
	require.NoError(t, err)
	require.Equal(t, "чужая правка", post.Text)
}

func TestEditPostValidationError(t *testing.T) {
	ctx := context.Background()
	env := defaultTestEnv(t)
	c := newClient(t, env)
	c.signup("auth")
	c.postForm("/create/", url.Values{"text": {"оригинал"}})
	postID := lastPost(t, env).ID

	w := c.postForm(postDetailURL(postID)+"edit/", url.Values{"text": {""}})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Введите текст поста!")

	post, err := env.store.PostByID(ctx, postID)
	require.NoError(t, err)
	require.Equal(t, "оригинал", post.Text)
}

func TestNotFoundPages(t *testing.T) {
	env := defaultTestEnv(t)
	c := newClient(t, env)

	for _, target := range []string{"/group/no-such/", "/profile/nobody/", "/posts/123/", "/totally/unknown/"} {
		w := c.get(target)
		require.Equalf(t, http.StatusNotFound, w.Code, "expected 404 for %s", target)
	}
}

func TestIndexPagination(t *testing.T) {
	ctx := context.Background()
	env := defaultTestEnv(t)
	author := &model.User{Username: "writer", PasswordHash: "x"}
	require.NoError(t, env.store.CreateUser(ctx, author))
	base := time.Now()
	for i := 0; i < 13; i++ {
		require.NoError(t, env.store.CreatePost(ctx, &model.Post{
			Text:     "запись",
			AuthorID: author.ID,
			PubDate:  base.Add(time.Duration(i) * time.Second),
		}))
	}

	c := newClient(t, env)
	w := c.get("/?page=2")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 3, strings.Count(w.Body.String(), "<article>"))

	w = c.get("/")
	require.Equal(t, 10, strings.Count(w.Body.String(), "<article>"))
}

func TestIndexPageCacheStaleness(t *testing.T) {
	ctx := context.Background()
	env := defaultTestEnv(t)
	c := newClient(t, env)
	c.signup("auth")

	// Warm the cache with an empty front page.
	w := c.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "новая запись")

	c.postForm("/create/", url.Values{"text": {"новая запись"}})

	// The cached page is still served: mutations do not invalidate it.
	w = c.get("/")
	require.NotContains(t, w.Body.String(), "новая запись")

	// After an explicit clear the post shows up.
	require.NoError(t, env.pages.Clear(ctx))
	w = c.get("/")
	require.Contains(t, w.Body.String(), "новая запись")
}

func TestSignupDuplicateUsername(t *testing.T) {
	env := defaultTestEnv(t)
	newClient(t, env).signup("auth")

	w := newClient(t, env).postForm("/auth/signup/", url.Values{
		"username":         {"auth"},
		"password":         {"pw"},
		"password_confirm": {"pw"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Имя пользователя уже занято!")
}

func TestPasswordChange(t *testing.T) {
	env := defaultTestEnv(t)
	c := newClient(t, env)
	c.signup("auth")

	// Wrong current password is rejected.
	w := c.postForm("/auth/password_change/", url.Values{
		"old_password":         {"wrong"},
		"new_password":         {"fresh"},
		"new_password_confirm": {"fresh"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Неверный текущий пароль!")

	w = c.postForm("/auth/password_change/", url.Values{
		"old_password":         {"secret"},
		"new_password":         {"fresh"},
		"new_password_confirm": {"fresh"},
	})
	require.Equal(t, http.StatusFound, w.Code)

	// Old password no longer works, the new one does.
	c.get("/auth/logout/")
	w = c.postForm("/auth/login/", url.Values{"username": {"auth"}, "password": {"secret"}})
	require.Equal(t, http.StatusOK, w.Code)
	w = c.postForm("/auth/login/", url.Values{"username": {"auth"}, "password": {"fresh"}})
	require.Equal(t, http.StatusFound, w.Code)
}

func TestLogout(t *testing.T) {
	env := defaultTestEnv(t)
	c := newClient(t, env)
	c.signup("auth")

	w := c.get("/auth/logout/")
	require.Equal(t, http.StatusFound, w.Code)

	w = c.get("/create/")
	require.Equal(t, http.StatusFound, w.Code)
	require.Contains(t, w.Header().Get("Location"), "/auth/login/")
}

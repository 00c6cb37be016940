package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/courseshop/lib/myhttpclient"
	"github.com/MarcGrol/courseshop/lib/mystore"
	"github.com/MarcGrol/courseshop/lib/mytime"
	"github.com/MarcGrol/courseshop/services/profiles"
)

func TestHTTPDirectory(t *testing.T) {
	c := context.TODO()

	setup := func(status int, body string) (Directory, *http.Request, *inviteRequest) {
		received := &http.Request{}
		payload := &inviteRequest{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*received = *r.Clone(context.TODO())
			reqBody, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(reqBody, payload)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		t.Cleanup(server.Close)

		return NewHTTPDirectory(server.URL+"/", "service-key", myhttpclient.New(5*time.Second)), received, payload
	}

	t.Run("invite creates account", func(t *testing.T) {
		sut, received, payload := setup(http.StatusOK, `{"id":"u-123","email":"a@x.com"}`)

		account, err := sut.Invite(c, "a@x.com", Attributes{FullName: "Ann"})
		require.NoError(t, err)
		assert.Equal(t, "u-123", account.ID)

		assert.Equal(t, "/auth/v1/invite", received.URL.Path)
		assert.Equal(t, http.MethodPost, received.Method)
		assert.Equal(t, "service-key", received.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", received.Header.Get("Authorization"))
		assert.Equal(t, "a@x.com", payload.Email)
		assert.Equal(t, "Ann", payload.Data.FullName)
	})

	t.Run("existing account", func(t *testing.T) {
		sut, _, _ := setup(http.StatusUnprocessableEntity, `{"code":422,"error_code":"email_exists","msg":"A user with this email address has already been registered"}`)

		_, err := sut.Invite(c, "a@x.com", Attributes{})
		assert.True(t, errors.Is(err, ErrAccountExists))
	})

	t.Run("existing account recognised by message", func(t *testing.T) {
		sut, _, _ := setup(http.StatusConflict, `{"message":"User already registered"}`)

		_, err := sut.Invite(c, "a@x.com", Attributes{})
		assert.True(t, errors.Is(err, ErrAccountExists))
	})

	t.Run("other failure", func(t *testing.T) {
		sut, _, _ := setup(http.StatusInternalServerError, `{"msg":"database down"}`)

		_, err := sut.Invite(c, "a@x.com", Attributes{})
		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrAccountExists))
		assert.Contains(t, err.Error(), "database down")
	})

	t.Run("success without id", func(t *testing.T) {
		sut, _, _ := setup(http.StatusOK, `{}`)

		_, err := sut.Invite(c, "a@x.com", Attributes{})
		assert.Error(t, err)
	})
}

type sequenceUUIDer struct {
	ids []string
}

func (u *sequenceUUIDer) Create() string {
	id := u.ids[0]
	u.ids = u.ids[1:]
	return id
}

func TestInMemoryDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	c := context.TODO()

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
	store, _, err := mystore.NewInMemoryStore[profiles.Profile](c)
	require.NoError(t, err)
	profileStore := profiles.NewStoreProfiles(store)

	sut := NewInMemoryDirectory(&sequenceUUIDer{ids: []string{"u-1", "u-2"}}, nower, profileStore)

	account, err := sut.Invite(c, "a@x.com", Attributes{FullName: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", account.ID)

	profile, found, err := profileStore.GetByEmail(c, "a@x.com")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "u-1", profile.ID)
	assert.Equal(t, "Ann", profile.FullName)

	_, err = sut.Invite(c, "A@X.com", Attributes{})
	assert.True(t, errors.Is(err, ErrAccountExists))

	_, err = sut.Invite(c, " ", Attributes{})
	assert.Error(t, err)
}

func TestInMemoryDirectoryProfileFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	c := context.TODO()

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
	profileStore := profiles.NewMockStore(ctrl)
	gomock.InOrder(
		profileStore.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(profiles.Profile{}, errors.New("connection reset")),
		profileStore.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(profiles.Profile{ID: "u-2", Email: "a@x.com"}, nil),
	)

	sut := NewInMemoryDirectory(&sequenceUUIDer{ids: []string{"u-1", "u-2"}}, nower, profileStore)

	_, err := sut.Invite(c, "a@x.com", Attributes{FullName: "Ann"})
	assert.Error(t, err)

	account, err := sut.Invite(c, "a@x.com", Attributes{FullName: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "u-2", account.ID)
}

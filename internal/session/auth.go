package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"go.uber.org/zap"

	"tricktable/internal/game/engine"
	"tricktable/internal/network"
	"tricktable/internal/store"
)

// Authenticator checks logins against the player store. Passwords arrive
// and are stored as hex MD5 digests; they are compared as sent.
type Authenticator struct {
	store store.PlayerStore
	log   *zap.Logger
}

func NewAuthenticator(s store.PlayerStore, log *zap.Logger) *Authenticator {
	return &Authenticator{store: s, log: log.Named("auth")}
}

func (a *Authenticator) Authenticate(ctx context.Context, login *network.UserLogin) (string, network.ResponseCode, error) {
	name := engine.NewPlayer(login.Username).Name()
	if name == "" {
		return "", network.ResponseFail, nil
	}
	digest := strings.ToLower(login.PasswordHashHex)

	switch login.Action {
	case network.NewUser:
		created, err := a.store.Create(ctx, name, digest)
		if err != nil {
			return "", network.ResponseFail, err
		}
		if !created {
			a.log.Info("name taken", zap.String("player", name))
			return name, network.ResponseFail, nil
		}
		return name, network.ResponseOK, nil

	case network.LoginUser:
		p, err := a.store.GetByName(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return name, network.ResponseUnauthorized, nil
		}
		if err != nil {
			return "", network.ResponseFail, err
		}
		if subtle.ConstantTimeCompare([]byte(p.PasswordHashHex), []byte(digest)) != 1 {
			a.log.Info("bad password", zap.String("player", name))
			return name, network.ResponseUnauthorized, nil
		}
		return name, network.ResponseOK, nil
	}
	return "", network.ResponseFail, nil
}

package services

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

// Identity is one auth-state event. An empty OwnerID means signed out.
// Subscribers treat the most recent event as current truth; no history is kept.
type Identity struct {
	OwnerID string
}

type authClaims struct {
	UserID string `json:"userId"`
	jwt.StandardClaims
}

type AuthService struct {
	Users  *repos.UserRepo
	Secret []byte

	mu   sync.Mutex
	subs []chan Identity
}

func NewAuthService(users *repos.UserRepo, secret []byte) *AuthService {
	return &AuthService{Users: users, Secret: secret}
}

func (s *AuthService) Register(name, email, password string) (*domain.User, error) {
	if existing, err := s.Users.ByEmail(email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	u := domain.User{ID: uuid.NewString(), Email: email, Name: name, Hash: string(h)}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	u.Hash = ""
	return &u, nil
}

// Login verifies credentials, binds the browsing session to the user, issues a
// bearer token and publishes the signed-in identity.
func (s *AuthService) Login(sid, email, password string) (*domain.User, string, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, "", ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", ErrBadCreds
	}
	if sid != "" {
		if err := s.Users.BindSession(sid, u.ID); err != nil {
			return nil, "", err
		}
	}

	claims := authClaims{
		UserID: u.ID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return nil, "", err
	}

	s.publish(Identity{OwnerID: u.ID})
	u.Hash = ""
	return u, tok, nil
}

func (s *AuthService) Logout(sid string) error {
	var err error
	if sid != "" {
		err = s.Users.UnbindSession(sid)
	}
	s.publish(Identity{})
	return err
}

// OwnerFromToken resolves the owner identity carried in a bearer token.
func (s *AuthService) OwnerFromToken(tokenStr string) (string, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.Secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrUnauthenticated
	}
	return claims.UserID, nil
}

// Subscribe registers for auth-state events. Each subscriber's channel holds
// at most one pending event; a newer event displaces an unread older one, so
// a slow reader always sees the latest state.
func (s *AuthService) Subscribe() <-chan Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Identity, 1)
	s.subs = append(s.subs, ch)
	return ch
}

func (s *AuthService) publish(id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- id:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- id
		}
	}
}

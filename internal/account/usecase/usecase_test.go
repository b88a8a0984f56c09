package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/gokode/internal/account/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/config"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/pkg/hash"
	"github.com/shandysiswandi/gokode/internal/pkg/instrument"
	"github.com/shandysiswandi/gokode/internal/pkg/jwt"
	"github.com/shandysiswandi/gokode/internal/pkg/mfa"
	"github.com/shandysiswandi/gokode/internal/pkg/otp"
	"github.com/shandysiswandi/gokode/internal/pkg/uid"
	"github.com/shandysiswandi/gokode/internal/pkg/validator"
	libOTP "github.com/pquerna/otp"
)

const testConfigYAML = `
modules:
  account:
    refresh_token_ttl_days: 30
    mfa_login_ttl_minutes: 5
`

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type fakeStringID struct {
	mu sync.Mutex
	n  int
}

func (f *fakeStringID) Generate() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.n++
	return fmt.Sprintf("opaque-%d", f.n)
}

type fakeCodes struct {
	mu         sync.Mutex
	issued     []string // "channel/recipient/purpose"
	issueErr   error
	confirmErr error
}

func (f *fakeCodes) Issue(_ context.Context, channel, recipient, purpose string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.issueErr != nil {
		return f.issueErr
	}
	f.issued = append(f.issued, channel+"/"+recipient+"/"+purpose)
	return nil
}

func (f *fakeCodes) Confirm(_ context.Context, _, _, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.confirmErr
}

func (f *fakeCodes) issuedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.issued)
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []UserRegisteredEvent
	err    error
}

func (f *fakeMessaging) PublishUserRegistered(_ context.Context, msg UserRegisteredEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, msg)
	return nil
}

type userRow struct {
	user      entity.User
	password  string
	mfaSecret []byte
}

type fakeRepoDB struct {
	mu         sync.Mutex
	users      map[int64]*userRow
	refresh    map[string]*entity.UserRefreshToken // keyed by token hash
	challenges map[string]*entity.LoginChallenge   // keyed by token hash
	recovery   map[int64][]entity.RecoveryCode
	usedCodes  map[int64]bool
	failWith   error
}

func newFakeRepoDB() *fakeRepoDB {
	return &fakeRepoDB{
		users:      make(map[int64]*userRow),
		refresh:    make(map[string]*entity.UserRefreshToken),
		challenges: make(map[string]*entity.LoginChallenge),
		recovery:   make(map[int64][]entity.RecoveryCode),
		usedCodes:  make(map[int64]bool),
	}
}

func (f *fakeRepoDB) byEmail(email string) *userRow {
	for _, row := range f.users {
		if row.user.Email == email {
			return row
		}
	}
	return nil
}

func (f *fakeRepoDB) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}
	if row := f.byEmail(email); row != nil {
		u := row.user
		return &u, nil
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeRepoDB) GetUserLoginInfo(_ context.Context, email string) (*entity.UserLoginInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return nil, f.failWith
	}
	row := f.byEmail(email)
	if row == nil {
		return nil, goerror.ErrNotFound
	}
	return &entity.UserLoginInfo{
		ID:        row.user.ID,
		Email:     row.user.Email,
		Status:    row.user.Status,
		Password:  row.password,
		MFAStatus: row.user.MFAStatus,
	}, nil
}

func (f *fakeRepoDB) GetUserMFAInfo(_ context.Context, id int64) (*entity.UserMFAInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &entity.UserMFAInfo{
		ID:        row.user.ID,
		Email:     row.user.Email,
		Status:    row.user.Status,
		MFAStatus: row.user.MFAStatus,
		MFASecret: row.mfaSecret,
	}, nil
}

func (f *fakeRepoDB) GetUserRefreshToken(_ context.Context, tokenHash string) (*entity.UserRefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rt, ok := f.refresh[tokenHash]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	row, ok := f.users[rt.UserID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	out := *rt
	out.UserEmail = row.user.Email
	out.UserStatus = row.user.Status
	return &out, nil
}

func (f *fakeRepoDB) GetLoginChallengeByToken(_ context.Context, tokenHash string) (*entity.LoginChallengeUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lc, ok := f.challenges[tokenHash]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	row, ok := f.users[lc.UserID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &entity.LoginChallengeUser{
		ChallengeID:        lc.ID,
		ChallengeExpiresAt: lc.ExpiresAt,
		UserID:             row.user.ID,
		UserEmail:          row.user.Email,
		UserStatus:         row.user.Status,
		MFAStatus:          row.user.MFAStatus,
		MFASecret:          row.mfaSecret,
	}, nil
}

func (f *fakeRepoDB) GetRecoveryCodes(_ context.Context, userID int64) ([]entity.RecoveryCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []entity.RecoveryCode
	for _, rc := range f.recovery[userID] {
		if !f.usedCodes[rc.ID] {
			out = append(out, rc)
		}
	}
	return out, nil
}

func (f *fakeRepoDB) CreateUser(_ context.Context, user entity.NewUser, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}
	if f.byEmail(user.Email) != nil {
		return goerror.ErrConflict
	}
	f.users[user.ID] = &userRow{
		user: entity.User{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Status:   user.Status,
		},
		password: passwordHash,
	}
	return nil
}

func (f *fakeRepoDB) CreateRefreshToken(_ context.Context, in entity.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}
	f.refresh[in.Token] = &entity.UserRefreshToken{
		UserID:           in.UserID,
		RefreshID:        in.ID,
		RefreshExpiresAt: in.ExpiresAt,
	}
	return nil
}

func (f *fakeRepoDB) CreateLoginChallenge(_ context.Context, in entity.LoginChallenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	lc := in
	f.challenges[in.Token] = &lc
	return nil
}

func (f *fakeRepoDB) ActivateUser(_ context.Context, id int64, oldStatus, newStatus entity.UserStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.users[id]
	if !ok || row.user.Status != oldStatus {
		return goerror.ErrNotFound
	}
	row.user.Status = newStatus
	return nil
}

func (f *fakeRepoDB) RotateRefreshToken(_ context.Context, ro entity.RotateRefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, rt := range f.refresh {
		if rt.RefreshID == ro.OldID && rt.UserID == ro.UserID && !rt.RefreshRevoked {
			rt.RefreshRevoked = true
			newID := ro.NewID
			rt.RefreshReplacedByTokenID = &newID
			f.refresh[ro.NewToken] = &entity.UserRefreshToken{
				UserID:           ro.UserID,
				RefreshID:        ro.NewID,
				RefreshExpiresAt: ro.NewExpiresAt,
			}
			return nil
		}
	}
	return goerror.ErrNotFound
}

func (f *fakeRepoDB) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rt, ok := f.refresh[tokenHash]; ok {
		rt.RefreshRevoked = true
	}
	return nil
}

func (f *fakeRepoDB) RevokeAllRefreshTokens(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, rt := range f.refresh {
		if rt.UserID == userID {
			rt.RefreshRevoked = true
		}
	}
	return nil
}

func (f *fakeRepoDB) ResetUserPassword(_ context.Context, userID int64, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.users[userID]
	if !ok {
		return goerror.ErrNotFound
	}
	row.password = passwordHash
	for _, rt := range f.refresh {
		if rt.UserID == userID {
			rt.RefreshRevoked = true
		}
	}
	return nil
}

func (f *fakeRepoDB) SetPendingTOTPSecret(_ context.Context, userID int64, secret []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.users[userID]
	if !ok {
		return goerror.ErrNotFound
	}
	row.user.MFAStatus = entity.MFAStatusPending
	row.mfaSecret = secret
	return nil
}

func (f *fakeRepoDB) ActivateMFA(_ context.Context, userID int64, codes []entity.RecoveryCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.users[userID]
	if !ok || row.user.MFAStatus != entity.MFAStatusPending {
		return goerror.ErrNotFound
	}
	row.user.MFAStatus = entity.MFAStatusActive
	f.recovery[userID] = codes
	return nil
}

func (f *fakeRepoDB) MarkRecoveryCodeUsed(_ context.Context, codeID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, rc := range f.recovery[userID] {
		if rc.ID == codeID && !f.usedCodes[codeID] {
			f.usedCodes[codeID] = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepoDB) DeleteLoginChallenge(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for hash, lc := range f.challenges {
		if lc.ID == id {
			delete(f.challenges, hash)
		}
	}
	return nil
}

type harness struct {
	uc    *Usecase
	clk   *fakeClock
	repo  *fakeRepoDB
	codes *fakeCodes
	msgs  *fakeMessaging
	hmac  hash.Hash
	argon hash.Hash
	bcr   hash.Hash
	enc   mfa.Encryptor
	totp  otp.OTP
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	sf, err := uid.NewSnowflake(1)
	if err != nil {
		t.Fatalf("NewSnowflake() error = %v", err)
	}

	clk := newFakeClock()

	tokener, err := jwt.NewHS512(jwt.Config{
		Secret:     []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
		Issuer:     "gokode-test",
		Audiences:  []string{"gokode"},
		TTLMinutes: 15 * time.Minute,
		Clock:      clk,
		UUID:       uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}

	h := &harness{
		clk:   clk,
		repo:  newFakeRepoDB(),
		codes: &fakeCodes{},
		msgs:  &fakeMessaging{},
		hmac:  hash.NewHMACSHA256("hmac-test-secret"),
		argon: hash.NewArgon2id("pepper"),
		bcr:   hash.NewBcrypt(4, "pepper"),
		enc:   mfa.NewAESGCMEncryptor(mfa.StaticKeyProvider{KeyBytes: make([]byte, 32)}),
		totp:  otp.NewTOTP("gokode-test", 30, 1, libOTP.DigitsSix),
	}

	h.uc = New(Dependency{
		RepoDB:        h.repo,
		RepoMessaging: h.msgs,
		Codes:         h.codes,
		Validator:     v10,
		Config:        cfg,
		HMAC:          h.hmac,
		Argon2ID:      h.argon,
		Bcrypt:        h.bcr,
		MFAEncryptor:  h.enc,
		RecoveryCodes: mfa.NewRecoveryCode(),
		UID:           sf,
		OID:           &fakeStringID{},
		Totp:          h.totp,
		Clock:         clk,
		JWT:           tokener,
		Instrument:    instrument.NewNoop(),
	})
	return h
}

// seedUser inserts an account with a hashed password, returning its ID.
func (h *harness) seedUser(t *testing.T, email, password string, status entity.UserStatus) int64 {
	t.Helper()

	hashed, err := h.argon.Hash(password)
	if err != nil {
		t.Fatalf("argon2id.Hash() error = %v", err)
	}

	id := int64(len(h.repo.users) + 1)
	h.repo.mu.Lock()
	h.repo.users[id] = &userRow{
		user: entity.User{
			ID:       id,
			Email:    email,
			FullName: "Test User",
			Status:   status,
		},
		password: string(hashed),
	}
	h.repo.mu.Unlock()
	return id
}

// authCtx returns a context carrying the claims the inbound middleware
// would have attached for an authenticated user.
func (h *harness) authCtx(userID int64) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: userID})
}

// enableTOTP activates MFA for a seeded user directly in the fake repo
// and returns the plaintext secret so tests can mint valid codes.
func (h *harness) enableTOTP(t *testing.T, userID int64) string {
	t.Helper()

	secret, _, err := h.totp.Generate("user@example.com")
	if err != nil {
		t.Fatalf("totp.Generate() error = %v", err)
	}

	encrypted, err := h.enc.Encrypt([]byte(secret), mfa.Scope{UserID: userID, Purpose: mfa.PurposeOTPSeed})
	if err != nil {
		t.Fatalf("mfaEncryptor.Encrypt() error = %v", err)
	}

	h.repo.mu.Lock()
	row := h.repo.users[userID]
	row.user.MFAStatus = entity.MFAStatusActive
	row.mfaSecret = encrypted
	h.repo.mu.Unlock()
	return secret
}

// seedRecoveryCode stores the bcrypt hash of a recovery code for a user.
func (h *harness) seedRecoveryCode(t *testing.T, userID int64, plain string) {
	t.Helper()

	hashed, err := h.bcr.Hash(plain)
	if err != nil {
		t.Fatalf("bcrypt.Hash() error = %v", err)
	}

	h.repo.mu.Lock()
	id := int64(1000 + len(h.repo.recovery[userID]))
	h.repo.recovery[userID] = append(h.repo.recovery[userID], entity.RecoveryCode{
		ID:     id,
		UserID: userID,
		Code:   string(hashed),
	})
	h.repo.mu.Unlock()
}

func assertCode(t *testing.T, err error, want goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *goerror.Error with code %v", err, want)
	}
	if gerr.Code() != want {
		t.Fatalf("error code = %v, want %v", gerr.Code(), want)
	}
}

package http

import (
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/dynamo"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/google"
	jwtinfra "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/jwt"
	s3infra "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/s3"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/smtp"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/sns"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/transport/http/middleware"
	"go.uber.org/zap"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	B2CCustomerRepo  *dynamo.B2CCustomerRepo
	AffiliateRepo    *dynamo.AffiliateRepo
	OrderRepo        *dynamo.OrderRepo
	CredentialRepo   *dynamo.CredentialRepo
	SessionRepo      *dynamo.SessionRepo
	PresenceRepo     *dynamo.PresenceRepo
	ResetRepo        *dynamo.PasswordResetRepo
	VerificationRepo *dynamo.EmailVerificationRepo
	EmailLogRepo     *dynamo.EmailLogRepo
	MaterialRepo     *dynamo.MaterialRepo
	AdminDocRepo     *dynamo.AdminDocumentRepo

	S3Store        *s3infra.Store
	Mailer         smtp.Mailer
	SMSSender      sns.SMSSender
	JWTProvider    *jwtinfra.Provider
	GoogleVerifier *google.Verifier

	// WindowStore backs the public-endpoint request cap. Main wires the
	// Redis store when REDIS_ADDR is set, the in-memory one otherwise.
	WindowStore middleware.WindowStore

	Logger *zap.Logger
}

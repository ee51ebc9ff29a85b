package idp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"

	"github.com/simpledungeon/api/internal/api/domain"
)

// Config carries the provider coordinates for one user pool + app client.
type Config struct {
	Region       string
	UserPoolID   string
	ClientID     string
	ClientSecret string

	// Endpoint overrides the provider URL, for local stacks and tests.
	Endpoint string
}

// cognitoAPI is the slice of the SDK client we call. Narrowed to an
// interface so error mapping can be tested against a stub.
type cognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	RespondToAuthChallenge(ctx context.Context, params *cip.RespondToAuthChallengeInput, optFns ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error)
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	AdminGetUser(ctx context.Context, params *cip.AdminGetUserInput, optFns ...func(*cip.Options)) (*cip.AdminGetUserOutput, error)
	AdminDeleteUser(ctx context.Context, params *cip.AdminDeleteUserInput, optFns ...func(*cip.Options)) (*cip.AdminDeleteUserOutput, error)
}

// Cognito implements Provider against AWS Cognito user pools.
type Cognito struct {
	api          cognitoAPI
	userPoolID   string
	clientID     string
	clientSecret string
}

var _ Provider = (*Cognito)(nil)

// NewCognito builds a provider client from ambient AWS credentials and the
// given pool/client coordinates.
func NewCognito(ctx context.Context, cfg Config) (*Cognito, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("idp: load aws config: %w", err)
	}

	api := cip.NewFromConfig(awsCfg, func(o *cip.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Cognito{
		api:          api,
		userPoolID:   cfg.UserPoolID,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}, nil
}

func (c *Cognito) secretHash(email string) string {
	return SecretHash(email, c.clientID, c.clientSecret)
}

func (c *Cognito) InitiateAuth(ctx context.Context, email, password string) (AuthResult, error) {
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"USERNAME":    email,
			"PASSWORD":    password,
			"SECRET_HASH": c.secretHash(email),
		},
	})
	if err != nil {
		return AuthResult{}, mapProviderError(err)
	}

	return mapAuthOutcome(string(out.ChallengeName), out.Session, out.AuthenticationResult), nil
}

func (c *Cognito) RespondToNewPasswordChallenge(ctx context.Context, email, newPassword, session string) (AuthResult, error) {
	out, err := c.api.RespondToAuthChallenge(ctx, &cip.RespondToAuthChallengeInput{
		ChallengeName: types.ChallengeNameTypeNewPasswordRequired,
		ClientId:      aws.String(c.clientID),
		Session:       aws.String(session),
		ChallengeResponses: map[string]string{
			"USERNAME":     email,
			"NEW_PASSWORD": newPassword,
			"SECRET_HASH":  c.secretHash(email),
		},
	})
	if err != nil {
		return AuthResult{}, mapProviderError(err)
	}

	return mapAuthOutcome(string(out.ChallengeName), out.Session, out.AuthenticationResult), nil
}

func (c *Cognito) SignUp(ctx context.Context, email, password string) error {
	_, err := c.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:   aws.String(c.clientID),
		Username:   aws.String(email),
		Password:   aws.String(password),
		SecretHash: aws.String(c.secretHash(email)),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	if err != nil {
		return mapProviderError(err)
	}
	return nil
}

func (c *Cognito) AdminGetUser(ctx context.Context, userIDOrEmail string) (domain.UserAccount, error) {
	out, err := c.api.AdminGetUser(ctx, &cip.AdminGetUserInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(userIDOrEmail),
	})
	if err != nil {
		return domain.UserAccount{}, mapProviderError(err)
	}

	account := domain.UserAccount{
		Username: aws.ToString(out.Username),
		Status:   string(out.UserStatus),
		Enabled:  out.Enabled,
	}
	if out.UserCreateDate != nil {
		account.CreatedAt = *out.UserCreateDate
	}
	for _, attr := range out.UserAttributes {
		if aws.ToString(attr.Name) == "email" {
			account.Email = aws.ToString(attr.Value)
		}
	}

	return account, nil
}

func (c *Cognito) AdminDeleteUser(ctx context.Context, userIDOrEmail string) error {
	_, err := c.api.AdminDeleteUser(ctx, &cip.AdminDeleteUserInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(userIDOrEmail),
	})
	if err != nil {
		return mapProviderError(err)
	}
	return nil
}

// mapAuthOutcome normalizes the two SDK response shapes into an AuthResult.
func mapAuthOutcome(challenge string, session *string, result *types.AuthenticationResultType) AuthResult {
	if result != nil {
		return AuthResult{
			Tokens: &domain.TokenSet{
				AccessToken:  aws.ToString(result.AccessToken),
				IDToken:      aws.ToString(result.IdToken),
				RefreshToken: aws.ToString(result.RefreshToken),
			},
		}
	}

	return AuthResult{
		Challenge: Challenge(challenge),
		Session:   aws.ToString(session),
	}
}

// mapProviderError translates the SDK's typed exceptions into this package's
// error vocabulary. Evaluated here, once, so nothing above this boundary
// branches on provider-specific error identifiers.
func mapProviderError(err error) error {
	var (
		notAuthorized   *types.NotAuthorizedException
		userNotFound    *types.UserNotFoundException
		unconfirmed     *types.UserNotConfirmedException
		usernameExists  *types.UsernameExistsException
		invalidPassword *types.InvalidPasswordException
		invalidParam    *types.InvalidParameterException
		tooManyRequests *types.TooManyRequestsException
		limitExceeded   *types.LimitExceededException
	)

	switch {
	case errors.As(err, &notAuthorized):
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, notAuthorized.ErrorCode())
	case errors.As(err, &userNotFound):
		return fmt.Errorf("%w: %s", ErrUserNotFound, userNotFound.ErrorCode())
	case errors.As(err, &unconfirmed):
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, unconfirmed.ErrorCode())
	case errors.As(err, &usernameExists):
		return fmt.Errorf("%w: %s", ErrUserExists, usernameExists.ErrorCode())
	case errors.As(err, &invalidPassword):
		return fmt.Errorf("%w: %s", ErrWeakPassword, invalidPassword.ErrorCode())
	case errors.As(err, &invalidParam):
		return fmt.Errorf("%w: %s", ErrInvalidParameter, invalidParam.ErrorCode())
	case errors.As(err, &tooManyRequests):
		return fmt.Errorf("%w: %s", ErrUnavailable, tooManyRequests.ErrorCode())
	case errors.As(err, &limitExceeded):
		return fmt.Errorf("%w: %s", ErrUnavailable, limitExceeded.ErrorCode())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// Server faults are the provider's problem, not a client mistake.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorFault() == smithy.FaultServer {
		return fmt.Errorf("%w: %s", ErrUnavailable, apiErr.ErrorCode())
	}

	return fmt.Errorf("idp: %w", err)
}

// ProviderTimeoutDefault bounds identity-provider calls so an unresponsive
// provider can't hang authentication requests indefinitely.
const ProviderTimeoutDefault = 10 * time.Second

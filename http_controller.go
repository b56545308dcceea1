package account

import (
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// AccountControllerRoutes holds the route paths so embedders can remap them.
type AccountControllerRoutes struct {
	Register   string
	Login      string
	Logout     string
	Current    string
	Avatars    string
	Verify     string
	VerifyLink string
}

type AccountController struct {
	Logger  Logger
	Engine  *Accounts
	Routes  *AccountControllerRoutes
	TempDir string
}

type AccountControllerOption func(*AccountController) *AccountController

func WithControllerLogger(logger Logger) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerTempDir(dir string) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		if dir != "" {
			c.TempDir = dir
		}
		return c
	}
}

func NewAccountController(engine *Accounts, opts ...AccountControllerOption) *AccountController {
	c := &AccountController{
		Logger:  defLogger{},
		Engine:  engine,
		TempDir: os.TempDir(),
		Routes: &AccountControllerRoutes{
			Register:   "/users/register",
			Login:      "/users/login",
			Logout:     "/users/logout",
			Current:    "/users/current",
			Avatars:    "/users/avatars",
			Verify:     "/users/verify",
			VerifyLink: "/users/verify/:verificationToken",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Engine == nil {
		panic("Missing Accounts engine in account controller...")
	}

	return c
}

// RegisterAccountRoutes mounts the account lifecycle API on a fiber app.
func RegisterAccountRoutes(app *fiber.App, controller *AccountController) {
	requireAuth := RequireAuth(controller.Engine)

	app.Post(controller.Routes.Register, controller.RegisterPost)
	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Get(controller.Routes.VerifyLink, controller.VerifyGet)
	app.Post(controller.Routes.Verify, controller.ResendVerificationPost)

	app.Post(controller.Routes.Logout, requireAuth, controller.LogoutPost)
	app.Get(controller.Routes.Current, requireAuth, controller.CurrentGet)
	app.Patch(controller.Routes.Avatars, requireAuth, controller.AvatarPatch)
}

// RegisterRequest payload
type RegisterRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
		)
	}, "invalid registration payload")
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(&r.Password, validation.Required),
		)
	}, "invalid login payload")
}

// ResendRequest payload
type ResendRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r ResendRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
		)
	}, "invalid verification payload")
}

func (a *AccountController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return a.respondError(c, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(c, err)
	}

	user, err := a.Engine.Register(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": user.Profile(),
	})
}

func (a *AccountController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.respondError(c, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidation(c, err)
	}

	token, user, err := a.Engine.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user.Profile(),
	})
}

func (a *AccountController) CurrentGet(c *fiber.Ctx) error {
	user, err := CurrentSessionUser(c)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.JSON(user.Profile())
}

func (a *AccountController) LogoutPost(c *fiber.Ctx) error {
	user, err := CurrentSessionUser(c)
	if err != nil {
		return a.respondError(c, err)
	}

	if err := a.Engine.Logout(c.UserContext(), user.ID.String()); err != nil {
		return a.respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (a *AccountController) AvatarPatch(c *fiber.Ctx) error {
	user, err := CurrentSessionUser(c)
	if err != nil {
		return a.respondError(c, err)
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "missing avatar file").
			WithCode(goerrors.CodeBadRequest))
	}

	tempPath := filepath.Join(a.TempDir, fmt.Sprintf("upload_%s_%s", uuid.NewString(), filepath.Base(file.Filename)))
	if err := c.SaveFile(file, tempPath); err != nil {
		a.Logger.Error("avatar save upload", "error", err)
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store upload"))
	}

	avatarURL, err := a.Engine.UpdateAvatar(c.UserContext(), user.ID.String(), tempPath, filepath.Base(file.Filename))
	if err != nil {
		return a.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"avatarUrl": avatarURL,
	})
}

func (a *AccountController) VerifyGet(c *fiber.Ctx) error {
	token := c.Params("verificationToken")

	if err := a.Engine.VerifyEmail(c.UserContext(), token); err != nil {
		return a.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Verification successful",
	})
}

func (a *AccountController) ResendVerificationPost(c *fiber.Ctx) error {
	payload := new(ResendRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("resend parse payload", "error", err)
		return a.respondError(c, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		// a missing email keeps its dedicated message
		if payload.Email == "" {
			return a.respondError(c, ErrMissingEmail)
		}
		return a.respondValidation(c, err)
	}

	if err := a.Engine.ResendVerification(c.UserContext(), payload.Email); err != nil {
		return a.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Verification email sent",
	})
}

func (a *AccountController) respondValidation(c *fiber.Ctx, err *goerrors.Error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message":    err.Message,
		"validation": err.ValidationMap(),
	})
}

func (a *AccountController) respondError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status < fiber.StatusBadRequest {
		status = fiber.StatusInternalServerError
	}

	message := richErr.Message
	// internal details stay in the logs
	if richErr.Category == goerrors.CategoryInternal || richErr.Category == goerrors.CategoryOperation {
		a.Logger.Error("request failed", "error", err)
		message = "Internal server error"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": message,
	})
}

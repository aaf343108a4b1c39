// Command token mints an access token for the overtime report API, signed with
// JWT_SECRET_KEY from the environment or .env.
package main

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/cmlabs-hris/hris-overtime-report/internal/config"
	"github.com/cmlabs-hris/hris-overtime-report/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-overtime-report/internal/pkg/jwt"
)

func main() {
	var (
		userID  = flag.String("user", "", "user id placed in the user_id claim (required)")
		role    = flag.String("role", middleware.RoleHR, "one of owner, manager, hr")
		company = flag.String("company", "", "restrict the token to one company")
	)
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "-user is required")
		flag.Usage()
		os.Exit(2)
	}
	if !slices.Contains(middleware.ReportRoles, *role) {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	token, expiresAt, err := JWTService.GenerateAccessToken(jwt.AccessClaims{
		UserID:    *userID,
		CompanyID: *company,
		Role:      *role,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
}

// Command adminctl manages back-office admin accounts.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/DavidGamba/go-getoptions"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/momentumgaming/backend/internal/config"
	"github.com/momentumgaming/backend/internal/logging"
	"github.com/momentumgaming/backend/internal/repository"
	"github.com/momentumgaming/backend/internal/service"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) int {
	opt := getoptions.New()
	opt.Self("adminctl", "Manage back-office admin accounts")
	opt.HelpCommand("help", opt.Alias("h", "?"))

	create := opt.NewCommand("create-admin", "create an admin account")
	create.String("email", "", create.Required(), create.Description("admin email address"))
	create.String("password", "", create.Description("password; read from stdin when omitted"))
	create.SetCommandFn(func(ctx context.Context, o *getoptions.GetOpt, _ []string) error {
		return withAuth(ctx, func(svc *service.AuthServiceImpl) error {
			password, err := passwordFrom(o, stdin)
			if err != nil {
				return err
			}
			admin, err := svc.CreateAdmin(ctx, o.Value("email").(string), password)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "created admin %s (%s)\n", admin.Email, admin.ID)
			return nil
		})
	})

	change := opt.NewCommand("change-password", "replace an admin's password")
	change.String("email", "", change.Required(), change.Description("admin email address"))
	change.String("password", "", change.Description("new password; read from stdin when omitted"))
	change.SetCommandFn(func(ctx context.Context, o *getoptions.GetOpt, _ []string) error {
		return withAuth(ctx, func(svc *service.AuthServiceImpl) error {
			password, err := passwordFrom(o, stdin)
			if err != nil {
				return err
			}
			if err := svc.ChangePassword(ctx, o.Value("email").(string), password); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "password changed")
			return nil
		})
	})

	purge := opt.NewCommand("purge-sessions", "delete expired admin sessions")
	purge.SetCommandFn(func(ctx context.Context, _ *getoptions.GetOpt, _ []string) error {
		return withPool(ctx, func(pool *pgxpool.Pool) error {
			n, err := service.NewSessionService(repository.NewPgSessionRepository(pool)).PurgeExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%d sessions purged\n", n)
			return nil
		})
	})

	remaining, err := opt.Parse(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		fmt.Fprint(os.Stderr, opt.Help(getoptions.HelpSynopsis))
		return 2
	}
	if err := opt.Dispatch(ctx, remaining); err != nil {
		if errors.Is(err, getoptions.ErrorHelpCalled) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}

// passwordFrom returns --password, or the first line of stdin.
func passwordFrom(o *getoptions.GetOpt, stdin io.Reader) (string, error) {
	if o.Called("password") {
		return o.Value("password").(string), nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

func withPool(ctx context.Context, fn func(*pgxpool.Pool) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "adminctl"})
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, 2)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()
	return fn(pool)
}

func withAuth(ctx context.Context, fn func(*service.AuthServiceImpl) error) error {
	return withPool(ctx, func(pool *pgxpool.Pool) error {
		return fn(service.NewAuthService(repository.NewPgAdminRepository(pool), nil))
	})
}

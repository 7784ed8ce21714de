package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-hrms-client/api"
	"github.com/jrsteele09/go-hrms-client/internal/config"
	"github.com/jrsteele09/go-hrms-client/routes"
	"github.com/jrsteele09/go-hrms-client/session"
	"github.com/jrsteele09/go-hrms-client/store"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = fmt.Errorf("panic recovered")
		}
	}()

	if len(args) == 0 {
		usage()
		return nil
	}

	c := config.New()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	st := store.NewFileStore(c.GetDataFolder(), logger)
	nav := &terminalNavigator{log: logger}

	client, err := api.New(c.GetBaseURL(), st,
		api.WithTimeout(c.GetRequestTimeout()),
		api.WithLogger(logger),
		api.WithUnauthenticatedHook(func() { nav.Navigate(routes.Login) }),
	)
	if err != nil {
		return err
	}

	manager, err := session.New(client, st, nav, session.WithLogger(logger))
	if err != nil {
		return err
	}
	manager.Init()

	ctx := context.Background()

	switch args[0] {
	case "login":
		return loginCmd(ctx, c, manager, args[1:])
	case "whoami":
		return whoamiCmd(manager, st)
	case "refresh":
		return refreshCmd(ctx, manager)
	case "passwd":
		return passwdCmd(ctx, manager, args[1:])
	case "logout":
		manager.Logout(ctx)
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func loginCmd(ctx context.Context, c config.Config, manager *session.Manager, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email address")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("login requires -email and -password")
	}

	displayAppname(c.GetAppName())
	if err := manager.Login(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", manager.User().DisplayName())
	return nil
}

func whoamiCmd(manager *session.Manager, st store.Store) error {
	if !manager.IsAuthenticated() {
		fmt.Println("Not logged in")
		return nil
	}

	user := manager.User()
	fmt.Printf("User:   %s <%s>\n", user.DisplayName(), user.Email)
	fmt.Printf("Roles:  %v\n", user.Roles)
	if tenant := manager.Tenant(); tenant != nil {
		fmt.Printf("Tenant: %s (%s)\n", tenant.Name, tenant.ID)
	}
	fmt.Printf("Lands:  %s\n", routes.ForRoles(user.Roles))

	if sess := st.Read(); sess != nil {
		if expiry, err := api.TokenExpiry(sess.AccessToken); err == nil {
			fmt.Printf("Token:  expires %s\n", expiry.Format(time.RFC3339))
		}
	}
	return nil
}

func refreshCmd(ctx context.Context, manager *session.Manager) error {
	if err := manager.RefreshProfile(ctx); err != nil {
		return err
	}
	fmt.Printf("Profile refreshed for %s\n", manager.User().DisplayName())
	return nil
}

func passwdCmd(ctx context.Context, manager *session.Manager, args []string) error {
	fs := flag.NewFlagSet("passwd", flag.ContinueOnError)
	oldPassword := fs.String("old", "", "current password")
	newPassword := fs.String("new", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *oldPassword == "" || *newPassword == "" {
		return fmt.Errorf("passwd requires -old and -new")
	}
	if err := manager.ChangePassword(ctx, *oldPassword, *newPassword); err != nil {
		return err
	}
	fmt.Println("Password changed")
	return nil
}

func usage() {
	fmt.Println("Usage: hrmscli <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  login -email <email> -password <password>")
	fmt.Println("  whoami")
	fmt.Println("  refresh")
	fmt.Println("  passwd -old <password> -new <password>")
	fmt.Println("  logout")
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

// terminalNavigator stands in for browser navigation; it reports where the
// application would land.
type terminalNavigator struct {
	log zerolog.Logger
}

func (n *terminalNavigator) Navigate(dest routes.Destination) {
	n.log.Info().Str("destination", string(dest)).Msg("navigate")
}

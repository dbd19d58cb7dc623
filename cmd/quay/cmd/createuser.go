package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nfrund/quay/internal/auth"
	"github.com/nfrund/quay/internal/domain"
	"github.com/nfrund/quay/internal/handlers"
	"github.com/nfrund/quay/internal/modules/users"
	"github.com/nfrund/quay/internal/view"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type createUserOptions struct {
	Username string
	Name     string
	Password string
	// BaseURL prefixes the profile link printed on success.
	BaseURL string
}

var newUser createUserOptions

var createUserCmd = &cobra.Command{
	Use:   "createuser",
	Short: "Create a user account",
	Long: `Creates a user. The password is taken from --password or, when that is
empty, read from standard input without echo when it is a terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, backend, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer backend.Close()

		opts := newUser
		opts.BaseURL = cfg.GetAppBaseURL()
		return runCreateUser(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), backend.Users(), opts)
	},
}

func init() {
	rootCmd.AddCommand(createUserCmd)
	createUserCmd.Flags().StringVarP(&newUser.Username, "username", "u", "", "Login name of the new user")
	createUserCmd.Flags().StringVarP(&newUser.Name, "name", "n", "", "Display name of the new user")
	createUserCmd.Flags().StringVarP(&newUser.Password, "password", "p", "", "Password (read from stdin when empty)")
	_ = createUserCmd.MarkFlagRequired("username")
}

func runCreateUser(ctx context.Context, in io.Reader, w io.Writer, repo domain.UserRepository, opts createUserOptions) error {
	username := strings.TrimSpace(opts.Username)
	if username == "" {
		return errors.New("username is required")
	}

	form := users.UpdateForm{Name: opts.Name}
	form.Normalize()
	if err := handlers.NewValidator().Validate(form); err != nil {
		if fields := handlers.FieldErrors(err); fields["name"] != "" {
			return fmt.Errorf("name: %s", fields["name"])
		}
		return err
	}

	password := opts.Password
	if password == "" {
		fmt.Fprint(w, "Password: ")
		var err error
		if password, err = readPassword(in); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(w)
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user := &domain.User{Username: username, Name: form.Name, PasswordHash: hash}
	if err := repo.Create(ctx, user); err != nil {
		return err
	}
	fmt.Fprintf(w, "User %s created with id %s.\n", user.Username, user.ID)
	if opts.BaseURL != "" {
		fmt.Fprintf(w, "Profile: %s%s\n", strings.TrimSuffix(opts.BaseURL, "/"), view.ProfileURL(user.ID))
	}
	return nil
}

// readPassword reads one line from in, turning off echo when in is a terminal.
func readPassword(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return string(b), err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfeidau/escuela/internal/auth"
	"github.com/wolfeidau/escuela/internal/session"
)

// LoginCmd authenticates and stores the session.
type LoginCmd struct {
	Username string `arg:"" help:"Username"`
	Password string `help:"Password, prompted when unset" env:"ESCUELA_PASSWORD"`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.Open()
	if err != nil {
		return err
	}

	password := l.Password
	if password == "" {
		fmt.Fprint(globals.stderr(), "Contraseña: ")
		if password, err = globals.readLine(); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}
	if password == "" {
		return errors.New("Por favor complete los campos requeridos: Contraseña")
	}

	sess, err := a.Gateway.Login(ctx, l.Username, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(globals.stdout(), "Sesión iniciada como %s (%s)\n", sess.Username, sess.Role)
	return nil
}

// LogoutCmd clears the stored session.
type LogoutCmd struct{}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.Open()
	if err != nil {
		return err
	}

	a.Gateway.Logout()

	fmt.Fprintln(globals.stdout(), "Sesión cerrada")
	return nil
}

// WhoamiCmd shows the current session.
type WhoamiCmd struct {
	Refresh bool `help:"Refresh the user details from the server"`
}

func (w *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.Open()
	if err != nil {
		return err
	}

	sess := a.State.Current()
	if w.Refresh {
		if sess, err = a.Gateway.Me(ctx); err != nil {
			if errors.Is(err, session.ErrNoSession) {
				return errors.New("no hay sesión activa")
			}
			return err
		}
	}
	if sess == nil {
		return errors.New("no hay sesión activa")
	}

	tw := newTable(globals.stdout())
	fmt.Fprintf(tw, "Usuario:\t%s\n", sess.Username)
	fmt.Fprintf(tw, "Correo:\t%s\n", sess.Email)
	fmt.Fprintf(tw, "Rol:\t%s\n", sess.Role)
	if !sess.ExpiresAt.IsZero() {
		status := "vigente"
		if sess.IsExpired() {
			status = "expirada"
		}
		fmt.Fprintf(tw, "Expira:\t%s (%s)\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04"), status)
	}
	return tw.Flush()
}

// RegisterCmd creates a user account without logging in.
type RegisterCmd struct {
	Username string `arg:"" help:"Username"`
	Email    string `help:"Email address"`
	Password string `help:"Password, prompted when unset" env:"ESCUELA_PASSWORD"`
}

func (r *RegisterCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.Open()
	if err != nil {
		return err
	}

	password := r.Password
	if password == "" {
		fmt.Fprint(globals.stderr(), "Contraseña: ")
		if password, err = globals.readLine(); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	ack, err := a.Gateway.Register(ctx, auth.Registration{Username: r.Username, Email: r.Email, Password: password})
	if err != nil {
		return err
	}

	message, _ := ack["message"].(string)
	if message == "" {
		message = "Usuario registrado exitosamente"
	}
	fmt.Fprintln(globals.stdout(), message)
	return nil
}

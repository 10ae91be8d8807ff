package app

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func loginCommand(cfg Config, log Logger) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "log in with phone and PIN",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "phone", Usage: "account phone number", Required: true},
			&cli.StringFlag{Name: "pin", Usage: "account PIN", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
				data, err := a.flow.Login(ctx, cmd.String("phone"), cmd.String("pin"))
				if err != nil {
					return err
				}
				fmt.Printf("logged in as %s\n", data.User.ID)
				return nil
			})
		},
	}
}

func logoutCommand(cfg Config, log Logger) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "log out and clear stored credentials",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
				if err := a.flow.Logout(ctx); err != nil {
					return err
				}
				fmt.Println("logged out")
				return nil
			})
		},
	}
}

func registerCommand(cfg Config, log Logger) *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create an account in three steps",
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "request an email verification code",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "email to register", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						if err := a.flow.StartRegistration(ctx, cmd.String("email")); err != nil {
							return err
						}
						fmt.Println("verification code sent, check your email")
						return nil
					})
				},
			},
			{
				Name:  "verify",
				Usage: "submit the emailed verification code",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "email being registered", Required: true},
					&cli.StringFlag{Name: "code", Usage: "verification code", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						if err := a.flow.VerifyCode(ctx, cmd.String("email"), cmd.String("code")); err != nil {
							return err
						}
						fmt.Println("email verified, run `fouron4 register complete` to finish")
						return nil
					})
				},
			},
			{
				Name:  "complete",
				Usage: "set phone and PIN to finish registration",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "display name", Required: true},
					&cli.StringFlag{Name: "phone", Usage: "phone number", Required: true},
					&cli.StringFlag{Name: "pin", Usage: "account PIN", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						data, err := a.flow.CompleteRegistration(ctx,
							cmd.String("name"), cmd.String("phone"), cmd.String("pin"))
						if err != nil {
							return err
						}
						fmt.Printf("welcome, account %s created\n", data.User.ID)
						return nil
					})
				},
			},
		},
	}
}

func resetCommand(cfg Config, log Logger) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "reset a forgotten PIN",
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "request a PIN reset code",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "account email", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						if err := a.flow.StartReset(ctx, cmd.String("email")); err != nil {
							return err
						}
						fmt.Println("reset code sent, check your email")
						return nil
					})
				},
			},
			{
				Name:  "complete",
				Usage: "set a new PIN with the reset code",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "account email", Required: true},
					&cli.StringFlag{Name: "code", Usage: "reset code", Required: true},
					&cli.StringFlag{Name: "pin", Usage: "new PIN", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						err := a.flow.CompleteReset(ctx,
							cmd.String("email"), cmd.String("code"), cmd.String("pin"))
						if err != nil {
							return err
						}
						fmt.Println("PIN updated, log in with the new PIN")
						return nil
					})
				},
			},
		},
	}
}

func whoamiCommand(cfg Config, log Logger) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the logged-in user",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
				cur := a.store.Current()
				if !cur.Valid() {
					fmt.Println("not logged in")
					return nil
				}
				fmt.Println(cur.UserID)
				return nil
			})
		},
	}
}

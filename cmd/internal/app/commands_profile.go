package app

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"fouron4/cmd/internal/api"
)

func profileCommand(cfg Config, log Logger) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "view and edit the account profile",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "show the profile",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						p, err := a.client.Me(ctx)
						if err != nil {
							return err
						}
						printProfile(p)
						return nil
					})
				},
			},
			{
				Name:  "update",
				Usage: "update name or phone",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "new display name"},
					&cli.StringFlag{Name: "phone", Usage: "new phone number"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						var upd api.ProfileUpdate
						if cmd.IsSet("name") {
							v := cmd.String("name")
							upd.Name = &v
						}
						if cmd.IsSet("phone") {
							v := cmd.String("phone")
							upd.Phone = &v
						}
						if upd.Name == nil && upd.Phone == nil {
							return fmt.Errorf("nothing to update, pass --name or --phone")
						}

						p, err := a.client.UpdateProfile(ctx, upd)
						if err != nil {
							return err
						}
						printProfile(p)
						return nil
					})
				},
			},
			{
				Name:  "avatar",
				Usage: "upload a new avatar image",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "path to the image", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						path := cmd.String("file")
						f, err := os.Open(path)
						if err != nil {
							return err
						}
						defer f.Close()

						url, err := a.client.UploadAvatar(ctx, f.Name(), f)
						if err != nil {
							return err
						}
						fmt.Println(url)
						return nil
					})
				},
			},
		},
	}
}

func printProfile(p api.Profile) {
	fmt.Printf("id:    %s\n", p.ID)
	fmt.Printf("name:  %s\n", p.Name)
	fmt.Printf("email: %s\n", p.Email)
	if p.Phone != "" {
		fmt.Printf("phone: %s\n", p.Phone)
	}
	if p.AvatarURL != "" {
		fmt.Printf("avatar: %s\n", p.AvatarURL)
	}
}

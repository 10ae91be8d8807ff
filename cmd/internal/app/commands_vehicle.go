package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"fouron4/cmd/internal/api"
)

func vehicleCommand(cfg Config, log Logger) *cli.Command {
	return &cli.Command{
		Name:  "vehicle",
		Usage: "manage vehicle listings",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list your vehicles",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						vs, err := a.client.Vehicles(ctx)
						if err != nil {
							return err
						}
						for _, v := range vs {
							fmt.Printf("%s  %d %s %s  %d seats  %d/seat\n",
								v.ID, v.Year, v.Make, v.Model, v.Seats, v.PricePerSeat)
						}
						return nil
					})
				},
			},
			{
				Name:      "get",
				Usage:     "show one vehicle",
				ArgsUsage: "<vehicle-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id := cmd.Args().First()
					if id == "" {
						return errors.New("vehicle id required")
					}
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						v, err := a.client.Vehicle(ctx, id)
						if err != nil {
							return err
						}
						printVehicle(v)
						return nil
					})
				},
			},
			{
				Name:  "add",
				Usage: "register a new vehicle",
				Flags: vehicleFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						v, err := a.client.CreateVehicle(ctx, vehicleInput(cmd))
						if err != nil {
							return err
						}
						fmt.Println(v.ID)
						return nil
					})
				},
			},
			{
				Name:      "update",
				Usage:     "update a vehicle listing",
				ArgsUsage: "<vehicle-id>",
				Flags:     vehicleFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id := cmd.Args().First()
					if id == "" {
						return errors.New("vehicle id required")
					}
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						v, err := a.client.UpdateVehicle(ctx, id, vehicleInput(cmd))
						if err != nil {
							return err
						}
						printVehicle(v)
						return nil
					})
				},
			},
			{
				Name:      "rm",
				Usage:     "remove a vehicle listing",
				ArgsUsage: "<vehicle-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id := cmd.Args().First()
					if id == "" {
						return errors.New("vehicle id required")
					}
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						return a.client.DeleteVehicle(ctx, id)
					})
				},
			},
			vehicleImagesCommand(cfg, log),
		},
	}
}

func vehicleImagesCommand(cfg Config, log Logger) *cli.Command {
	return &cli.Command{
		Name:  "images",
		Usage: "manage vehicle photos",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "attach a photo",
				ArgsUsage: "<vehicle-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "path to the image", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id := cmd.Args().First()
					if id == "" {
						return errors.New("vehicle id required")
					}
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						f, err := os.Open(cmd.String("file"))
						if err != nil {
							return err
						}
						defer f.Close()

						img, err := a.client.AddVehicleImage(ctx, id, f.Name(), f)
						if err != nil {
							return err
						}
						fmt.Printf("%s %s\n", img.ID, img.URL)
						return nil
					})
				},
			},
			{
				Name:      "rm",
				Usage:     "detach a photo",
				ArgsUsage: "<vehicle-id> <image-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, imageID := cmd.Args().Get(0), cmd.Args().Get(1)
					if id == "" || imageID == "" {
						return errors.New("vehicle id and image id required")
					}
					return withApp(ctx, cfg, log, func(ctx context.Context, a *App) error {
						return a.client.DeleteVehicleImage(ctx, id, imageID)
					})
				},
			},
		},
	}
}

func printVehicle(v api.Vehicle) {
	fmt.Printf("id:    %s\n", v.ID)
	fmt.Printf("make:  %s %s (%d)\n", v.Make, v.Model, v.Year)
	fmt.Printf("plate: %s\n", v.Plate)
	fmt.Printf("seats: %d at %d/seat\n", v.Seats, v.PricePerSeat)
	for _, img := range v.Images {
		fmt.Printf("image: %s %s\n", img.ID, img.URL)
	}
}

func vehicleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "make", Usage: "vehicle make", Required: true},
		&cli.StringFlag{Name: "model", Usage: "vehicle model", Required: true},
		&cli.IntFlag{Name: "year", Usage: "model year", Required: true},
		&cli.StringFlag{Name: "plate", Usage: "license plate", Required: true},
		&cli.IntFlag{Name: "seats", Usage: "bookable seats", Required: true},
		&cli.IntFlag{Name: "price", Usage: "price per seat", Required: true},
	}
}

func vehicleInput(cmd *cli.Command) api.VehicleInput {
	return api.VehicleInput{
		Make:         cmd.String("make"),
		Model:        cmd.String("model"),
		Year:         int(cmd.Int("year")),
		Plate:        cmd.String("plate"),
		Seats:        int(cmd.Int("seats")),
		PricePerSeat: int(cmd.Int("price")),
	}
}

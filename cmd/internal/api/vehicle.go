package api

import (
	"context"
	"fmt"
	"io"
)

// Vehicles lists the current driver's vehicle listings.
func (c *Client) Vehicles(ctx context.Context) ([]Vehicle, error) {
	env, err := c.Get(ctx, "/api/vehicle")
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}

	var vs []Vehicle
	if err := env.Decode(&vs); err != nil {
		return nil, fmt.Errorf("decode vehicles: %w", err)
	}
	return vs, nil
}

// Vehicle fetches a single vehicle listing by id.
func (c *Client) Vehicle(ctx context.Context, id string) (Vehicle, error) {
	env, err := c.Get(ctx, "/api/vehicle/"+id)
	if err != nil {
		return Vehicle{}, err
	}
	return decodeVehicle(env)
}

// CreateVehicle registers a new vehicle listing.
func (c *Client) CreateVehicle(ctx context.Context, in VehicleInput) (Vehicle, error) {
	env, err := c.Post(ctx, "/api/vehicle", in)
	if err != nil {
		return Vehicle{}, err
	}
	return decodeVehicle(env)
}

// UpdateVehicle replaces the writable fields of a listing.
func (c *Client) UpdateVehicle(ctx context.Context, id string, in VehicleInput) (Vehicle, error) {
	env, err := c.Put(ctx, "/api/vehicle/"+id, in)
	if err != nil {
		return Vehicle{}, err
	}
	return decodeVehicle(env)
}

// DeleteVehicle removes a listing.
func (c *Client) DeleteVehicle(ctx context.Context, id string) error {
	env, err := c.Delete(ctx, "/api/vehicle/"+id)
	if err != nil {
		return err
	}
	return env.Err()
}

// AddVehicleImage attaches a photo to a listing.
func (c *Client) AddVehicleImage(ctx context.Context, id, fileName string, file io.Reader) (VehicleImage, error) {
	env, err := c.PostForm(ctx, "/api/vehicle/"+id+"/images", &Form{
		FileField: "image",
		FileName:  fileName,
		File:      file,
	})
	if err != nil {
		return VehicleImage{}, err
	}
	if err := env.Err(); err != nil {
		return VehicleImage{}, err
	}

	var img VehicleImage
	if err := env.Decode(&img); err != nil {
		return VehicleImage{}, fmt.Errorf("decode vehicle image: %w", err)
	}
	return img, nil
}

// DeleteVehicleImage detaches a photo from a listing.
func (c *Client) DeleteVehicleImage(ctx context.Context, vehicleID, imageID string) error {
	env, err := c.Delete(ctx, "/api/vehicle/"+vehicleID+"/images/"+imageID)
	if err != nil {
		return err
	}
	return env.Err()
}

func decodeVehicle(env Envelope) (Vehicle, error) {
	if err := env.Err(); err != nil {
		return Vehicle{}, err
	}
	var v Vehicle
	if err := env.Decode(&v); err != nil {
		return Vehicle{}, fmt.Errorf("decode vehicle: %w", err)
	}
	return v, nil
}

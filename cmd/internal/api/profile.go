package api

import (
	"context"
	"fmt"
	"io"
)

// Me fetches the current account's profile.
func (c *Client) Me(ctx context.Context) (Profile, error) {
	env, err := c.Get(ctx, "/api/profile/me")
	if err != nil {
		return Profile{}, err
	}
	if err := env.Err(); err != nil {
		return Profile{}, err
	}

	var p Profile
	if err := env.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}

// UpdateProfile patches the mutable profile fields and returns the updated
// profile.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (Profile, error) {
	env, err := c.Put(ctx, "/api/profile/me", upd)
	if err != nil {
		return Profile{}, err
	}
	if err := env.Err(); err != nil {
		return Profile{}, err
	}

	var p Profile
	if err := env.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}

// UploadAvatar replaces the account's avatar image and returns its URL.
func (c *Client) UploadAvatar(ctx context.Context, fileName string, file io.Reader) (string, error) {
	env, err := c.PostForm(ctx, "/api/profile/me/avatar", &Form{
		FileField: "avatar",
		FileName:  fileName,
		File:      file,
	})
	if err != nil {
		return "", err
	}
	if err := env.Err(); err != nil {
		return "", err
	}

	var data struct {
		AvatarURL string `json:"avatarUrl"`
	}
	if err := env.Decode(&data); err != nil {
		return "", fmt.Errorf("decode avatar response: %w", err)
	}
	return data.AvatarURL, nil
}

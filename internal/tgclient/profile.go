package tgclient

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/telegram/uploader"
	mtp "github.com/gotd/td/tg"

	"github.com/nkarpov/telesync/internal/tg"
)

// Me returns the account's own profile fields with platform nulls coerced
// to empty strings, so downstream copies overwrite unset fields as empty.
func (c *Client) Me(ctx context.Context) (tg.UserProfile, error) {
	self, err := c.client.Self(ctx)
	if err != nil {
		return tg.UserProfile{}, fmt.Errorf("get self: %w", mapErr(err))
	}
	full, err := c.raw().UsersGetFullUser(ctx, &mtp.InputUserSelf{})
	if err != nil {
		return tg.UserProfile{}, fmt.Errorf("get full user: %w", mapErr(err))
	}

	first, _ := self.GetFirstName()
	last, _ := self.GetLastName()
	about, _ := full.FullUser.GetAbout()
	return tg.UserProfile{FirstName: first, LastName: last, Bio: about}, nil
}

// UpdateProfile writes all three profile fields unconditionally. Empty
// values clear the corresponding field rather than being skipped.
func (c *Client) UpdateProfile(ctx context.Context, p tg.UserProfile) error {
	req := &mtp.AccountUpdateProfileRequest{}
	req.SetFirstName(p.FirstName)
	req.SetLastName(p.LastName)
	req.SetAbout(p.Bio)
	if _, err := c.raw().AccountUpdateProfile(ctx, req); err != nil {
		return fmt.Errorf("update profile: %w", mapErr(err))
	}
	return nil
}

// Avatars lists the account's profile photos and video avatars, newest
// first (platform order).
func (c *Client) Avatars(ctx context.Context) ([]tg.Avatar, error) {
	res, err := c.raw().PhotosGetUserPhotos(ctx, &mtp.PhotosGetUserPhotosRequest{
		UserID: &mtp.InputUserSelf{},
		Limit:  100,
	})
	if err != nil {
		return nil, fmt.Errorf("get avatars: %w", mapErr(err))
	}

	var photos []mtp.PhotoClass
	switch r := res.(type) {
	case *mtp.PhotosPhotos:
		photos = r.Photos
	case *mtp.PhotosPhotosSlice:
		photos = r.Photos
	default:
		return nil, fmt.Errorf("unexpected avatars response %T", res)
	}

	out := make([]tg.Avatar, 0, len(photos))
	for _, pc := range photos {
		p, ok := pc.AsNotEmpty()
		if !ok {
			continue
		}
		videoSizes, video := p.GetVideoSizes()
		out = append(out, tg.Avatar{
			ID:            p.ID,
			AccessHash:    p.AccessHash,
			FileReference: p.FileReference,
			Date:          time.Unix(int64(p.Date), 0),
			Video:         video,
			SizeType:      largestSizeType(p.Sizes, videoSizes, video),
		})
	}
	return out, nil
}

// DownloadAvatar fetches the avatar's largest stored size into memory.
func (c *Client) DownloadAvatar(ctx context.Context, a tg.Avatar) ([]byte, error) {
	loc := &mtp.InputPhotoFileLocation{
		ID:            a.ID,
		AccessHash:    a.AccessHash,
		FileReference: a.FileReference,
		ThumbSize:     a.SizeType,
	}
	var buf bytes.Buffer
	if _, err := downloader.NewDownloader().Download(c.raw(), loc).Stream(ctx, &buf); err != nil {
		return nil, fmt.Errorf("download avatar: %w", mapErr(err))
	}
	return buf.Bytes(), nil
}

// UploadAvatar uploads a photo or video avatar onto the account.
func (c *Client) UploadAvatar(ctx context.Context, name string, blob []byte, video bool) error {
	file, err := uploader.NewUploader(c.raw()).FromBytes(ctx, name, blob)
	if err != nil {
		return fmt.Errorf("upload avatar file: %w", mapErr(err))
	}

	req := &mtp.PhotosUploadProfilePhotoRequest{}
	if video {
		req.SetVideo(file)
	} else {
		req.SetFile(file)
	}
	if _, err := c.raw().PhotosUploadProfilePhoto(ctx, req); err != nil {
		return fmt.Errorf("upload avatar: %w", mapErr(err))
	}
	return nil
}

// largestSizeType picks the download size type. Telegram orders size lists
// smallest to largest; video avatars download via their video size type.
func largestSizeType(sizes []mtp.PhotoSizeClass, videoSizes []mtp.VideoSizeClass, video bool) string {
	if video && len(videoSizes) > 0 {
		if vs, ok := videoSizes[len(videoSizes)-1].(*mtp.VideoSize); ok {
			return vs.Type
		}
	}
	if len(sizes) > 0 {
		return sizes[len(sizes)-1].GetType()
	}
	return ""
}

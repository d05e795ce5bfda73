package feed

import (
	"encoding/json"
	"fmt"
)

// Item is one entry of the latest feed. Only ID takes part in ordering;
// Raw holds the full JSON object exactly as the API sent it.
type Item struct {
	ID  int64
	Raw json.RawMessage
}

func (i *Item) UnmarshalJSON(data []byte) error {
	var head struct {
		ID *int64 `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("decode item: %w", err)
	}
	if head.ID == nil {
		return fmt.Errorf("decode item: missing id")
	}

	i.ID = *head.ID
	i.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (i Item) MarshalJSON() ([]byte, error) {
	if len(i.Raw) == 0 {
		return json.Marshal(struct {
			ID int64 `json:"id"`
		}{i.ID})
	}
	return i.Raw, nil
}

// Decode unmarshals the raw payload into v.
func (i Item) Decode(v any) error {
	return json.Unmarshal(i.Raw, v)
}

// Video returns the payload decoded as a Video.
func (i Item) Video() (Video, error) {
	var v Video
	if err := i.Decode(&v); err != nil {
		return Video{}, fmt.Errorf("decode video %d: %w", i.ID, err)
	}
	return v, nil
}

type Video struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ThumbnailURL string   `json:"thumbnail_url"`
	VideoURL     string   `json:"video_url"`
	UploadDate   string   `json:"upload_date"`
	Views        int64    `json:"views"`
	Likes        int64    `json:"likes"`
	IsApproved   bool     `json:"is_approved"`
	Uploader     Uploader `json:"uploader"`
}

type Uploader struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	ProfileImage    string `json:"profile_image"`
	SubscriberCount int64  `json:"subscriber_count"`
}

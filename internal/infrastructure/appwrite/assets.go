package appwrite

import "net/url"

// InitialsURL returns the initials avatar URL for name. No request is made.
func (c *Client) InitialsURL(name string) string {
	q := url.Values{}
	q.Set("name", name)
	q.Set("project", c.project)
	return c.endpoint + "/avatars/initials?" + q.Encode()
}

// FileViewURL returns the view URL of a stored file. No request is made.
func (c *Client) FileViewURL(bucketID, fileID string) string {
	q := url.Values{}
	q.Set("project", c.project)
	return c.endpoint + escapePath("storage", "buckets", bucketID, "files", fileID, "view") + "?" + q.Encode()
}

package domain

// ImageRef points at an asset held by the blob store. URL and Handle are
// either both set or both empty.
type ImageRef struct {
	URL    string `json:"url" bson:"url"`
	Handle string `json:"public_id" bson:"handle"`
}

// NewImageRef returns an error when only one half of the reference is set.
func NewImageRef(url, handle string) (ImageRef, error) {
	if (url == "") != (handle == "") {
		return ImageRef{}, Invalid("image", "image reference must carry both url and handle")
	}
	return ImageRef{URL: url, Handle: handle}, nil
}

func (r ImageRef) IsZero() bool {
	return r.URL == "" && r.Handle == ""
}

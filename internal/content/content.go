// Package content maps an authorized download onto a concrete stored
// artifact: which file variant to serve, under what name, and with which
// content type and disposition.
package content

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/crowdforge/contest-api/internal/types"
)

// ErrVariantNotFound reports that the submission exists but has no stored
// artifact for the requested variant.
var ErrVariantNotFound = errors.New("content: no artifact for requested variant")

// Submission carries the file-level facts the resolver needs. It is
// deliberately decoupled from the database models.
type Submission struct {
	ID               int64
	SubmitterID      int64
	OriginalFileName string
	StoredPath       string
	PreviewPath      string
}

// Image is one rendered design image attached to a submission.
type Image struct {
	TypeID   int
	Path     string
	FileName string
}

// Artifact is the fully resolved response plan for a download.
type Artifact struct {
	Path        string
	FileName    string
	ContentType string
	Inline      bool
}

var contentTypes = map[string]string{
	".zip":  "application/zip",
	".gz":   "application/octet-stream",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".7z":   "application/x-7z-compressed",
	".jar":  "application/java-archive",
	".png":  "image/png",
	".gif":  "image/gif",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".bmp":  "image/bmp",
	".ico":  "image/x-icon",
}

// ContentType returns the media type for a stored file name. Extensions are
// matched case insensitively and unknown ones fall back to octet-stream.
func ContentType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// downloadName hides the submitter's original file name from everyone but
// the submitter themselves. Other callers see the submission id with the
// original extension.
func downloadName(sub Submission, storedName string, callerID int64) string {
	if callerID == sub.SubmitterID {
		return storedName
	}
	return fmt.Sprintf("%d%s", sub.ID, strings.ToLower(filepath.Ext(storedName)))
}

// ResolveDevelop plans the response for a develop track download. Develop
// submissions always serve the uploaded bundle as an attachment.
func ResolveDevelop(sub Submission, callerID int64) (Artifact, error) {
	if sub.StoredPath == "" {
		return Artifact{}, ErrVariantNotFound
	}
	name := downloadName(sub, sub.OriginalFileName, callerID)
	return Artifact{
		Path:        sub.StoredPath,
		FileName:    name,
		ContentType: ContentType(name),
		Inline:      false,
	}, nil
}

// Request selects a design track variant. FileIndex is 1-based and picks
// among several stored renders of the same image type; zero means first.
type Request struct {
	Type        types.SubmissionType
	ImageTypeID int
	FileIndex   int
}

func findImage(images []Image, typeID, fileIndex int) (Image, bool) {
	if fileIndex < 1 {
		fileIndex = 1
	}
	n := 0
	for _, img := range images {
		if img.TypeID == typeID {
			n++
			if n == fileIndex {
				return img, true
			}
		}
	}
	return Image{}, false
}

// ResolveDesign plans the response for a design track download. Design
// artifacts render inline so galleries can embed them.
func ResolveDesign(sub Submission, images []Image, req Request, callerID int64) (Artifact, error) {
	if req.ImageTypeID != 0 {
		if !types.ValidImageTypeID(req.ImageTypeID) {
			return Artifact{}, fmt.Errorf("content: image type %d: %w", req.ImageTypeID, ErrVariantNotFound)
		}
		img, ok := findImage(images, req.ImageTypeID, req.FileIndex)
		if !ok {
			return Artifact{}, ErrVariantNotFound
		}
		return imageArtifact(sub, img, callerID), nil
	}

	switch req.Type {
	case types.SubmissionTypeOriginal:
		if sub.StoredPath == "" {
			return Artifact{}, ErrVariantNotFound
		}
		name := downloadName(sub, sub.OriginalFileName, callerID)
		return Artifact{
			Path:        sub.StoredPath,
			FileName:    name,
			ContentType: ContentType(name),
			Inline:      true,
		}, nil
	case types.SubmissionTypeSmall:
		img, ok := findImage(images, types.ImageTypeSmallWatermarked, req.FileIndex)
		if !ok {
			return Artifact{}, ErrVariantNotFound
		}
		return imageArtifact(sub, img, callerID), nil
	case types.SubmissionTypePreview:
		if sub.PreviewPath != "" {
			name := downloadName(sub, sub.OriginalFileName, callerID)
			return Artifact{
				Path:        sub.PreviewPath,
				FileName:    name,
				ContentType: ContentType(name),
				Inline:      true,
			}, nil
		}
		// No packaged preview. Fall back to the best watermarked image.
		for _, typeID := range []int{types.ImageTypeFullWatermarked, types.ImageTypeFullPlain} {
			if img, ok := findImage(images, typeID, req.FileIndex); ok {
				return imageArtifact(sub, img, callerID), nil
			}
		}
		return Artifact{}, ErrVariantNotFound
	default:
		return Artifact{}, fmt.Errorf("content: submission type %q: %w", req.Type, ErrVariantNotFound)
	}
}

func imageArtifact(sub Submission, img Image, callerID int64) Artifact {
	name := downloadName(sub, img.FileName, callerID)
	return Artifact{
		Path:        img.Path,
		FileName:    name,
		ContentType: ContentType(name),
		Inline:      true,
	}
}

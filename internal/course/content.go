package course

// ContentType enumerates the kinds of lesson content blocks.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentVideo ContentType = "video"
	ContentAudio ContentType = "audio"
	ContentImage ContentType = "image"
	ContentCode  ContentType = "code"
	ContentLink  ContentType = "link"
	ContentQuiz  ContentType = "quiz"
)

// ContentTypes lists every accepted kind in a stable order.
var ContentTypes = []ContentType{
	ContentText,
	ContentVideo,
	ContentAudio,
	ContentImage,
	ContentCode,
	ContentLink,
	ContentQuiz,
}

// Valid reports whether t is one of ContentTypes.
func (t ContentType) Valid() bool {
	for _, k := range ContentTypes {
		if k == t {
			return true
		}
	}
	return false
}

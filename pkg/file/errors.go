package file

import "errors"

var (
	// ErrNilFileHeader is returned when a nil file header is provided
	ErrNilFileHeader = errors.New("file header is nil")

	// ErrInvalidPath is returned when the path contains traversal attempts
	ErrInvalidPath = errors.New("invalid path")

	// ErrFileNotFound is returned when a file does not exist
	ErrFileNotFound = errors.New("file not found")

	// ErrFileTooLarge is returned when a file exceeds the maximum allowed size
	ErrFileTooLarge = errors.New("file size exceeds maximum allowed size")

	// ErrInvalidConfig is returned when the storage configuration is incomplete
	ErrInvalidConfig = errors.New("invalid storage configuration")

	// ErrFailedToOpenFile is returned when a file cannot be opened
	ErrFailedToOpenFile = errors.New("failed to open file")

	// ErrFailedToReadFile is returned when a file cannot be read
	ErrFailedToReadFile = errors.New("failed to read file")

	// ErrFailedToWriteFile is returned when a file cannot be written
	ErrFailedToWriteFile = errors.New("failed to write file")

	// ErrFailedToCreateDirectory is returned when a directory cannot be created
	ErrFailedToCreateDirectory = errors.New("failed to create directory")

	// ErrFailedToDeleteFile is returned when a file cannot be deleted
	ErrFailedToDeleteFile = errors.New("failed to delete file")
)

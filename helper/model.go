package helper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
)

// DefaultOnnxFilePath is the ONNX file selected within a downloaded model
// repository when the caller does not name one.
const DefaultOnnxFilePath = "onnx/model.onnx"

// PrepareModel downloads the model if it doesn't exist and returns the model path.
// Model names like "sentence-transformers/all-MiniLM-L6-v2" are sanitized to a
// single directory name under ./models. An empty onnxFilePath selects
// DefaultOnnxFilePath.
func PrepareModel(modelName string, onnxFilePath string) (string, error) {
	modelDir := "./models"
	sanitizedName := strings.ReplaceAll(modelName, "/", "_")
	modelPath := filepath.Join(modelDir, sanitizedName)

	if onnxFilePath == "" {
		onnxFilePath = DefaultOnnxFilePath
	}

	// Check if model exists, if not download it
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(modelDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create model directory: %w", err)
		}
		downloadOptions := hugot.NewDownloadOptions()
		downloadOptions.OnnxFilePath = onnxFilePath
		downloadedPath, err := hugot.DownloadModel(modelName, modelDir, downloadOptions)
		if err != nil {
			return "", fmt.Errorf("failed to download model: %w", err)
		}
		modelPath = downloadedPath
	}

	return modelPath, nil
}

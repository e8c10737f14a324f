package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/client"
	"github.com/Aazukvid2000/Pyxolotl/internal/config"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MediaService stores uploaded assets either on local disk or on Cloudinary
// depending on size. Game archives always go remote so they survive restarts
// on ephemeral hosting.
type MediaService interface {
	SaveCover(ctx context.Context, fh *multipart.FileHeader, gameID uint) (string, error)
	SaveScreenshot(ctx context.Context, fh *multipart.FileHeader, gameID uint) (string, error)
	SaveAvatar(ctx context.Context, fh *multipart.FileHeader) (string, error)
	SaveTrailer(ctx context.Context, fh *multipart.FileHeader, gameID uint) (string, error)
	SaveGameArchive(ctx context.Context, fh *multipart.FileHeader, gameID uint) (string, float64, error)
	DeleteLocalFile(assetPath string) bool
	DeleteRemoteAsset(ctx context.Context, assetURL, resourceType string) bool
}

type mediaServiceImpl struct {
	uploadsCfg config.Uploads
	cloudinary client.CloudinaryClient
	logger     zerolog.Logger
}

func NewMediaService(
	uploadsCfg config.Uploads,
	cloudinary client.CloudinaryClient,
	logger zerolog.Logger,
) MediaService {
	return &mediaServiceImpl{
		uploadsCfg: uploadsCfg,
		cloudinary: cloudinary,
		logger:     logger,
	}
}

func (s *mediaServiceImpl) SaveCover(ctx context.Context, fh *multipart.FileHeader, gameID uint) (string, error) {
	return s.saveImage(ctx, fh, gameID, "portada")
}

func (s *mediaServiceImpl) SaveScreenshot(ctx context.Context, fh *multipart.FileHeader, gameID uint) (string, error) {
	return s.saveImage(ctx, fh, gameID, "screenshot")
}

func (s *mediaServiceImpl) SaveAvatar(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	return s.saveImage(ctx, fh, 0, "avatar")
}

func (s *mediaServiceImpl) saveImage(ctx context.Context, fh *multipart.FileHeader, gameID uint, kind string) (string, error) {
	if err := checkExtension(fh.Filename, s.uploadsCfg.ImageFormats); err != nil {
		return "", err
	}

	sizeMB := sizeInMB(fh)
	if sizeMB > float64(s.uploadsCfg.MaxImageMB) {
		return "", apperr.PayloadTooLarge(fmt.Sprintf("Imagen muy grande. Máximo: %dMB", s.uploadsCfg.MaxImageMB))
	}

	// large images go to Cloudinary, small ones stay on disk
	if sizeMB > float64(s.uploadsCfg.RemoteImageThresholdMB) && s.cloudinary.Enabled() {
		folder := "pyxolotl/avatares"
		if gameID != 0 {
			folder = fmt.Sprintf("pyxolotl/juegos/%d", gameID)
		}

		url, err := s.uploadRemote(ctx, fh, folder, client.ResourceImage)
		if err == nil {
			return url, nil
		}
		s.logger.Warn().Err(err).Str("kind", kind).Msg("remote image upload failed, falling back to local storage")
	}

	subdir := "avatares"
	if gameID != 0 {
		subdir = fmt.Sprintf("juegos/%d/imagenes", gameID)
	}

	return s.saveLocal(fh, subdir, kind)
}

func (s *mediaServiceImpl) SaveTrailer(ctx context.Context, fh *multipart.FileHeader, gameID uint) (string, error) {
	if err := checkExtension(fh.Filename, s.uploadsCfg.VideoFormats); err != nil {
		return "", err
	}

	sizeMB := sizeInMB(fh)
	if sizeMB > float64(s.uploadsCfg.MaxVideoMB) {
		return "", apperr.PayloadTooLarge(fmt.Sprintf("Video muy grande. Máximo: %dMB", s.uploadsCfg.MaxVideoMB))
	}

	if sizeMB > float64(s.uploadsCfg.RemoteVideoThresholdMB) && s.cloudinary.Enabled() {
		folder := fmt.Sprintf("pyxolotl/juegos/%d", gameID)

		url, err := s.uploadRemote(ctx, fh, folder, client.ResourceVideo)
		if err == nil {
			return url, nil
		}
		s.logger.Warn().Err(err).Msg("remote video upload failed, falling back to local storage")
	}

	return s.saveLocal(fh, fmt.Sprintf("juegos/%d/videos", gameID), "trailer")
}

// SaveGameArchive stores the downloadable package. With Cloudinary configured
// the upload must succeed, a local copy on ephemeral hosting would be lost on
// the next deploy.
func (s *mediaServiceImpl) SaveGameArchive(ctx context.Context, fh *multipart.FileHeader, gameID uint) (string, float64, error) {
	if err := checkExtension(fh.Filename, s.uploadsCfg.GameFormats); err != nil {
		return "", 0, err
	}

	sizeMB := sizeInMB(fh)
	if sizeMB > float64(s.uploadsCfg.MaxGameMB) {
		return "", 0, apperr.PayloadTooLarge(fmt.Sprintf("Archivo muy grande. Máximo: %dMB", s.uploadsCfg.MaxGameMB))
	}

	if s.cloudinary.Enabled() {
		folder := fmt.Sprintf("pyxolotl/juegos/%d/archivos", gameID)

		url, err := s.uploadRemote(ctx, fh, folder, client.ResourceRaw)
		if err != nil {
			return "", 0, apperr.Upstream("No se pudo subir el archivo del juego", err)
		}

		return url, sizeMB, nil
	}

	s.logger.Warn().Uint("game_id", gameID).Msg("cloudinary not configured, storing game archive locally")

	url, err := s.saveLocal(fh, fmt.Sprintf("juegos/%d/archivos", gameID), "game")
	if err != nil {
		return "", 0, err
	}

	return url, sizeMB, nil
}

func (s *mediaServiceImpl) uploadRemote(ctx context.Context, fh *multipart.FileHeader, folder, resourceType string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	url, err := s.cloudinary.Upload(ctx, src, folder, resourceType)
	if err != nil {
		return "", err
	}

	s.logger.Info().Str("url", url).Str("folder", folder).Msg("asset uploaded to cloudinary")
	return url, nil
}

func (s *mediaServiceImpl) saveLocal(fh *multipart.FileHeader, subdir, prefix string) (string, error) {
	name := uniqueFilename(sanitizeFilename(fh.Filename), prefix)

	dir := filepath.Join(s.uploadsCfg.Dir, filepath.FromSlash(subdir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create local file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write local file: %w", err)
	}

	assetPath := path.Join("/", s.uploadsCfg.Dir, subdir, name)
	s.logger.Info().Str("path", assetPath).Msg("asset stored locally")

	return assetPath, nil
}

func (s *mediaServiceImpl) DeleteLocalFile(assetPath string) bool {
	rel := strings.TrimPrefix(assetPath, "/")

	if _, err := os.Stat(rel); err != nil {
		s.logger.Warn().Str("path", assetPath).Msg("local file not found")
		return false
	}

	if err := os.Remove(rel); err != nil {
		s.logger.Error().Err(err).Str("path", assetPath).Msg("could not delete local file")
		return false
	}

	return true
}

func (s *mediaServiceImpl) DeleteRemoteAsset(ctx context.Context, assetURL, resourceType string) bool {
	publicID := client.ExtractPublicID(assetURL)
	if publicID == "" {
		return false
	}

	if err := s.cloudinary.Destroy(ctx, publicID, resourceType); err != nil {
		s.logger.Error().Err(err).Str("public_id", publicID).Msg("could not delete cloudinary asset")
		return false
	}

	return true
}

func sizeInMB(fh *multipart.FileHeader) float64 {
	return float64(fh.Size) / (1024 * 1024)
}

func checkExtension(filename string, allowed []string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}

	return apperr.Validation(fmt.Sprintf("Formato no permitido. Usa: %s", strings.Join(allowed, ", ")))
}

func sanitizeFilename(filename string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		"<", "_",
		">", "_",
		":", "_",
		"\"", "_",
		"|", "_",
		"?", "_",
		"*", "_",
	)
	return replacer.Replace(filename)
}

func uniqueFilename(original, prefix string) string {
	ext := filepath.Ext(original)
	stamp := time.Now().Format("20060102_150405")
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	if prefix != "" {
		return fmt.Sprintf("%s_%s_%s%s", prefix, stamp, random, ext)
	}
	return fmt.Sprintf("%s_%s%s", stamp, random, ext)
}

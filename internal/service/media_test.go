package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/client"
	"github.com/Aazukvid2000/Pyxolotl/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUploadsCfg() config.Uploads {
	return config.Uploads{
		Dir:                    "uploads",
		MaxImageMB:             1,
		MaxVideoMB:             2,
		MaxGameMB:              5,
		RemoteImageThresholdMB: 1,
		RemoteVideoThresholdMB: 1,
		ImageFormats:           []string{"jpg", "jpeg", "png", "webp"},
		VideoFormats:           []string{"mp4", "webm"},
		GameFormats:            []string{"zip", "rar", "7z", "exe"},
	}
}

func newMediaService(t *testing.T, cfg config.Uploads, cloud *fakeCloudinary) MediaService {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return NewMediaService(cfg, cloud, zerolog.Nop())
}

func TestSaveCoverLocally(t *testing.T) {
	media := newMediaService(t, testUploadsCfg(), &fakeCloudinary{})

	fh := multipartFile(t, "portada.png", []byte("png bytes"))
	url, err := media.SaveCover(context.Background(), fh, 7)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/juegos/7/imagenes/portada_"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	_, statErr := os.Stat(strings.TrimPrefix(url, "/"))
	assert.NoError(t, statErr)
}

func TestSaveAvatarLocally(t *testing.T) {
	media := newMediaService(t, testUploadsCfg(), &fakeCloudinary{})

	fh := multipartFile(t, "yo.jpg", []byte("jpg bytes"))
	url, err := media.SaveAvatar(context.Background(), fh)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/avatares/avatar_"), url)
}

func TestSaveImageRejectsUnknownFormat(t *testing.T) {
	media := newMediaService(t, testUploadsCfg(), &fakeCloudinary{})

	fh := multipartFile(t, "dibujo.bmp", []byte("bmp bytes"))
	_, err := media.SaveCover(context.Background(), fh, 7)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	assert.Contains(t, err.Error(), "Formato no permitido. Usa: jpg, jpeg, png, webp")
}

func TestSaveImageRejectsOversize(t *testing.T) {
	media := newMediaService(t, testUploadsCfg(), &fakeCloudinary{})

	fh := multipartFile(t, "enorme.png", bytes.Repeat([]byte("x"), 2<<20))
	_, err := media.SaveCover(context.Background(), fh, 7)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodePayloadTooLarge))
	assert.Contains(t, err.Error(), "Imagen muy grande. Máximo: 1MB")
}

func TestSaveImageGoesRemoteAboveThreshold(t *testing.T) {
	cfg := testUploadsCfg()
	cfg.MaxImageMB = 10
	cloud := &fakeCloudinary{enabled: true}
	media := newMediaService(t, cfg, cloud)

	fh := multipartFile(t, "portada.png", bytes.Repeat([]byte("x"), 2<<20))
	url, err := media.SaveCover(context.Background(), fh, 7)
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/test/upload/pyxolotl/juegos/7/asset_1", url)
	assert.Len(t, cloud.uploads, 1)
}

func TestSaveImageFallsBackToLocalOnRemoteFailure(t *testing.T) {
	cfg := testUploadsCfg()
	cfg.MaxImageMB = 10
	cloud := &fakeCloudinary{enabled: true, uploadErr: errors.New("cloudinary caído")}
	media := newMediaService(t, cfg, cloud)

	fh := multipartFile(t, "portada.png", bytes.Repeat([]byte("x"), 2<<20))
	url, err := media.SaveCover(context.Background(), fh, 7)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/juegos/7/imagenes/portada_"), url)
}

func TestSaveTrailer(t *testing.T) {
	media := newMediaService(t, testUploadsCfg(), &fakeCloudinary{})

	fh := multipartFile(t, "clip.mov", []byte("mov bytes"))
	_, err := media.SaveTrailer(context.Background(), fh, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Formato no permitido. Usa: mp4, webm")

	fh = multipartFile(t, "clip.mp4", []byte("mp4 bytes"))
	url, err := media.SaveTrailer(context.Background(), fh, 7)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/juegos/7/videos/trailer_"), url)
}

func TestSaveGameArchiveRemote(t *testing.T) {
	cloud := &fakeCloudinary{enabled: true}
	media := newMediaService(t, testUploadsCfg(), cloud)

	content := bytes.Repeat([]byte("z"), 2048)
	fh := multipartFile(t, "juego.zip", content)

	url, sizeMB, err := media.SaveGameArchive(context.Background(), fh, 7)
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/test/upload/pyxolotl/juegos/7/archivos/asset_1", url)
	assert.InDelta(t, float64(len(content))/(1<<20), sizeMB, 1e-12)
}

func TestSaveGameArchiveRemoteFailureIsFatal(t *testing.T) {
	cloud := &fakeCloudinary{enabled: true, uploadErr: errors.New("cloudinary caído")}
	media := newMediaService(t, testUploadsCfg(), cloud)

	fh := multipartFile(t, "juego.zip", []byte("zip bytes"))
	_, _, err := media.SaveGameArchive(context.Background(), fh, 7)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeUpstream))
	assert.Contains(t, err.Error(), "No se pudo subir el archivo del juego")
}

func TestSaveGameArchiveLocalWithoutCloudinary(t *testing.T) {
	media := newMediaService(t, testUploadsCfg(), &fakeCloudinary{})

	fh := multipartFile(t, "juego.zip", []byte("zip bytes"))
	url, sizeMB, err := media.SaveGameArchive(context.Background(), fh, 7)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/juegos/7/archivos/game_"), url)
	assert.Greater(t, sizeMB, 0.0)
}

func TestSaveSanitizesFilename(t *testing.T) {
	media := newMediaService(t, testUploadsCfg(), &fakeCloudinary{})

	fh := multipartFile(t, "../../etc/passwd.png", []byte("png bytes"))
	url, err := media.SaveCover(context.Background(), fh, 7)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/juegos/7/imagenes/portada_"), url)
	assert.NotContains(t, url, "..")
}

func TestDeleteLocalFile(t *testing.T) {
	media := newMediaService(t, testUploadsCfg(), &fakeCloudinary{})

	require.NoError(t, os.MkdirAll("uploads", 0o755))
	require.NoError(t, os.WriteFile("uploads/viejo.png", []byte("png"), 0o644))

	assert.True(t, media.DeleteLocalFile("/uploads/viejo.png"))
	_, err := os.Stat("uploads/viejo.png")
	assert.True(t, os.IsNotExist(err))

	assert.False(t, media.DeleteLocalFile("/uploads/viejo.png"))
}

func TestDeleteRemoteAsset(t *testing.T) {
	cloud := &fakeCloudinary{enabled: true}
	media := newMediaService(t, testUploadsCfg(), cloud)

	ok := media.DeleteRemoteAsset(context.Background(),
		"https://res.cloudinary.com/demo/image/upload/v123/pyxolotl/juegos/7/portada.png",
		client.ResourceImage)
	assert.True(t, ok)
	require.Len(t, cloud.destroyed, 1)
	assert.Equal(t, "pyxolotl/juegos/7/portada", cloud.destroyed[0])

	// local paths have no cloudinary public id
	assert.False(t, media.DeleteRemoteAsset(context.Background(), "/uploads/viejo.png", client.ResourceImage))
}

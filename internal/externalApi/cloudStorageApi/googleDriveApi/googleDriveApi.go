package googleDriveApi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"time"

	"github.com/KotFed0t/tinkoff_report_bot/config"
	"github.com/KotFed0t/tinkoff_report_bot/utils"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const downloadLinkTemplate = "https://drive.google.com/file/d/%s/view"

// GoogleDriveApi stores reports that are too large to be sent as telegram documents.
type GoogleDriveApi struct {
	srv     *drive.Service
	fileTTL time.Duration
	now     func() time.Time
}

func New(ctx context.Context, cfg *config.Config) *GoogleDriveApi {
	srv, err := drive.NewService(ctx, option.WithCredentialsFile(cfg.GoogleDrive.CredentialsFile))
	if err != nil {
		slog.Error("failed on drive.NewService")
		panic(err)
	}
	return &GoogleDriveApi{srv: srv, fileTTL: cfg.GoogleDrive.FileTTL, now: time.Now}
}

func (a *GoogleDriveApi) UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.UploadFile"

	slog.Debug("UploadFile start", slog.String("rqID", rqID), slog.String("op", op), slog.String("filename", filename))

	fileMeta := &drive.File{
		Name:     filename,
		MimeType: mime.TypeByExtension(filepath.Ext(filename)),
	}

	uploadedFile, err := a.srv.Files.
		Create(fileMeta).
		Media(reader). // автоматически разбивает на чанки по 16МБ и ретраит их при ошибках сети
		Context(ctx).
		Do()
	if err != nil {
		slog.Error("failed on uploading file to google drive", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	perm := &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}

	_, err = a.srv.Permissions.Create(uploadedFile.Id, perm).Context(ctx).Do()
	if err != nil {
		slog.Error("failed on creating permission to uploaded file in google drive", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	slog.Debug("UploadFile completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", uploadedFile.Id))

	return fmt.Sprintf(downloadLinkTemplate, uploadedFile.Id), nil
}

// DeleteOldFiles removes uploaded reports older than the configured TTL.
func (a *GoogleDriveApi) DeleteOldFiles(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.DeleteOldFiles"

	slog.Debug("DeleteOldFiles start", slog.String("rqID", rqID), slog.String("op", op))

	threshold := a.now().Add(-a.fileTTL)
	query := fmt.Sprintf("createdTime < '%s' and trashed = false", threshold.UTC().Format(time.RFC3339))

	r, err := a.srv.Files.List().Q(query).Fields("files(id, createdTime)").Context(ctx).Do()
	if err != nil {
		slog.Error("failed on getting files", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	deletedFiles := 0
	for _, f := range r.Files {
		err = a.srv.Files.Delete(f.Id).Context(ctx).Do()
		if err != nil {
			slog.Error(
				"failed delete file",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.String("err", err.Error()),
				slog.String("fileID", f.Id),
			)
			continue
		}
		deletedFiles++
	}

	err = a.srv.Files.EmptyTrash().Context(ctx).Do()
	if err != nil {
		slog.Error("failed empty trash", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	slog.Info("delete old files done", slog.String("rqID", rqID), slog.Int("deletedFiles", deletedFiles), slog.Int("failedFiles", len(r.Files)-deletedFiles))

	return nil
}

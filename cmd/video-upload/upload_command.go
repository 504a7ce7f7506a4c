package main

import (
	"fmt"
	"os"
	"path/filepath"

	"marketplace-backend/lib/video/uploader"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newUploadCommand(baseUrl, token *string) *cobra.Command {
	var title string
	var description string
	var ultraSmall bool

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Загрузить видеофайл и отправить его на согласование",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if *token == "" {
				return errors.New("не задан токен (--token)")
			}
			file, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "ошибка открытия файла")
			}
			defer file.Close()
			info, err := file.Stat()
			if err != nil {
				return errors.Wrap(err, "ошибка чтения размера файла")
			}
			if info.IsDir() {
				return errors.Errorf("%s является директорией", args[0])
			}
			if title == "" {
				title = filepath.Base(args[0])
			}

			chunkSize := int64(uploader.MicroChunkSize)
			if ultraSmall {
				chunkSize = uploader.UltraSmallChunkSize
			}
			out := cmd.OutOrStdout()
			client := uploader.NewHTTPClient(*baseUrl, *token)
			up := uploader.New(client, client,
				uploader.WithChunkSize(chunkSize),
				uploader.WithProgress(func(percent float64) {
					fmt.Fprintf(out, "загружено %.0f%%\n", percent)
				}),
			)
			sessionID := uuid.NewString()
			err = up.Upload(cmd.Context(), sessionID, file, uploader.Metadata{
				Title:        title,
				Description:  description,
				OriginalName: filepath.Base(args[0]),
				TotalSize:    info.Size(),
			})
			if err != nil {
				return errors.Wrapf(err, "загрузка %s не завершена", sessionID)
			}
			fmt.Fprintf(out, "видео загружено, сессия %s, ожидает согласования\n", sessionID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Название видео, по умолчанию имя файла")
	cmd.Flags().StringVar(&description, "description", "", "Описание видео")
	cmd.Flags().BoolVar(&ultraSmall, "ultra-small", false, "Чанки по 512 КиБ вместо 256 КиБ")
	return cmd
}

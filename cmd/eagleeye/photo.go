package main

import (
	"errors"
	"fmt"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/ALT-F4-LLC/eagleeye/internal/config"
	"github.com/ALT-F4-LLC/eagleeye/internal/imaging"
	"github.com/ALT-F4-LLC/eagleeye/internal/model"
	"github.com/ALT-F4-LLC/eagleeye/internal/output"
	"github.com/spf13/cobra"
)

type photoResult struct {
	Kind    model.PhotoKind `json:"kind"`
	File    string          `json:"file"`
	Skipped bool            `json:"skipped"`
	Reason  string          `json:"reason,omitempty"`
	Image   *imaging.Result `json:"image,omitempty"`
}

type photoSetResult struct {
	TargetID string        `json:"target_id"`
	Photos   []photoResult `json:"photos"`
}

var photoCmd = &cobra.Command{
	Use:   "photo",
	Short: "Attach or clear target photos",
}

var photoSetCmd = &cobra.Command{
	Use:   "set <operation> <target>",
	Short: "Downscale an image file and attach it to a target",
	Long: `Downscale an image file and attach it to a target.

Images are shrunk to fit the configured bounds (400x400 by default) and
re-encoded as JPEG before they are stored. An image that cannot be decoded
is skipped with a warning and the target keeps its current photo.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		files := map[model.PhotoKind]string{}
		for _, kind := range []model.PhotoKind{model.PhotoSuspect, model.PhotoLocation} {
			if v, ok := flagString(cmd, string(kind)); ok && v != "" {
				files[kind] = v
			}
		}
		if len(files) == 0 {
			return cmdErr(fmt.Errorf("set --suspect and/or --location to an image file"), output.ErrValidation)
		}

		opts, err := imageOptions(cfg)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		res := photoSetResult{}
		payloads := map[model.PhotoKind]string{}
		for _, kind := range []model.PhotoKind{model.PhotoSuspect, model.PhotoLocation} {
			path, ok := files[kind]
			if !ok {
				continue
			}
			pr := photoResult{Kind: kind, File: path}

			img, err := processPhoto(cmd, path, opts)
			switch {
			case err == nil:
				pr.Image = img
				payloads[kind] = img.Payload
			case errors.Is(err, imaging.ErrUndecodable), errors.Is(err, imaging.ErrTimeout):
				pr.Skipped = true
				pr.Reason = err.Error()
				w.Warn("Skipping %s photo: %v", kind, err)
			default:
				return cmdErr(err, output.ErrGeneral)
			}
			res.Photos = append(res.Photos, pr)
		}

		if len(payloads) == 0 {
			return cmdErr(fmt.Errorf("no usable image: nothing was attached"), output.ErrValidation)
		}

		var target model.Target
		_, err = updateOperation(cmd, args[0], func(op *model.Operation) error {
			t, err := op.MatchTarget(args[1])
			if err != nil {
				return err
			}
			for kind, p := range payloads {
				t.SetPhoto(kind, p)
			}
			target = *t
			return nil
		})
		if err != nil {
			return err
		}
		res.TargetID = target.ID

		w.Success(res, formatPhotoResult(target, res))
		return nil
	},
}

var photoClearCmd = &cobra.Command{
	Use:   "clear <operation> <target>",
	Short: "Remove photos from a target",
	Long:  "Remove photos from a target. Without --suspect or --location both are removed.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		suspect, _ := cmd.Flags().GetBool("suspect")
		location, _ := cmd.Flags().GetBool("location")
		if !suspect && !location {
			suspect, location = true, true
		}

		var target model.Target
		_, err := updateOperation(cmd, args[0], func(op *model.Operation) error {
			t, err := op.MatchTarget(args[1])
			if err != nil {
				return err
			}
			if suspect {
				t.SetPhoto(model.PhotoSuspect, "")
			}
			if location {
				t.SetPhoto(model.PhotoLocation, "")
			}
			target = *t
			return nil
		})
		if err != nil {
			return err
		}

		w.Success(target, fmt.Sprintf("Cleared photos of target %s: %s", model.ShortID(target.ID), target.Name))
		return nil
	},
}

func imageOptions(cfg *config.Config) (imaging.Options, error) {
	timeout, err := cfg.Settings.ImageTimeout()
	if err != nil {
		return imaging.Options{}, err
	}
	return imaging.Options{
		MaxWidth:  cfg.Settings.Images.MaxWidth,
		MaxHeight: cfg.Settings.Images.MaxHeight,
		Quality:   cfg.Settings.Images.Quality,
		Timeout:   timeout,
	}, nil
}

func processPhoto(cmd *cobra.Command, path string, opts imaging.Options) (*imaging.Result, error) {
	payload, err := imaging.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return imaging.Downscale(cmd.Context(), payload, opts)
}

func formatPhotoResult(t model.Target, res photoSetResult) string {
	var lines []string
	for _, p := range res.Photos {
		if p.Skipped {
			continue
		}
		lines = append(lines, fmt.Sprintf("Attached %s photo to %s: %dx%d, %s (from %dx%d %s, %s)",
			p.Kind, t.Name,
			p.Image.Width, p.Image.Height, humanize.Bytes(uint64(p.Image.Bytes)),
			p.Image.SourceWidth, p.Image.SourceHeight, p.Image.SourceFormat, humanize.Bytes(uint64(p.Image.SourceBytes)),
		))
	}
	return strings.Join(lines, "\n")
}

func init() {
	photoSetCmd.Flags().String(string(model.PhotoSuspect), "", "Image file for the suspect photo")
	photoSetCmd.Flags().String(string(model.PhotoLocation), "", "Image file for the location photo")
	photoClearCmd.Flags().Bool(string(model.PhotoSuspect), false, "Clear the suspect photo")
	photoClearCmd.Flags().Bool(string(model.PhotoLocation), false, "Clear the location photo")

	photoCmd.AddCommand(photoSetCmd, photoClearCmd)
	rootCmd.AddCommand(photoCmd)
}

package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/provscan/provscan/internal/storage"
	"github.com/provscan/provscan/pkg/shared"
	"github.com/provscan/provscan/pkg/shared/config"
	"github.com/provscan/provscan/pkg/shared/logger"
)

// RunOptionsUpload holds the arguments for the upload command.
type RunOptionsUpload struct {
	InputFile string
	Backend   string
	Bucket    string
	Prefix    string
	Region    string
	Dir       string
}

var (
	AppConfig          *config.Config
	uploadOptions      RunOptionsUpload
	exampleUploadUsage = `  # Archiving a report to an S3 bucket
  provscan upload --input report.json --backend s3 --bucket compliance-reports --prefix physics

  # Copying a report into a shared directory
  provscan upload --input report.json --backend local --dir /mnt/reports`
)

// UploadCmd represents the upload command.
var UploadCmd = &cobra.Command{
	Use:                   "upload --input/-i PATH --backend BACKEND [--bucket NAME] [--prefix PREFIX] [--region REGION] [--dir PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleUploadUsage,
	Short:                 "Uploads a saved report to an artifact storage backend",
	RunE:                  runUploadCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runUploadCommand executes the upload command.
func runUploadCommand(cmd *cobra.Command, args []string) error {
	if !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-upload")

	if err := validateUploadArgs(&uploadOptions); err != nil {
		logger.Error("invalid upload arguments", "error", err)
		return err
	}

	data, err := os.ReadFile(uploadOptions.InputFile)
	if err != nil {
		logger.Error("failed to read report", "error", err)
		return err
	}

	backend, err := newBackend(&uploadOptions)
	if err != nil {
		logger.Error("failed to create storage backend", "error", err)
		return err
	}

	key := filepath.Base(uploadOptions.InputFile)
	location, err := backend.Put(context.Background(), key, data)
	if err != nil {
		logger.Error("failed to upload report", "error", err)
		return err
	}

	logger.Info("report uploaded", "backend", uploadOptions.Backend, "location", location)
	fmt.Println(location)
	return nil
}

// newBackend builds the storage backend for the requested destination.
func newBackend(opts *RunOptionsUpload) (storage.Backend, error) {
	switch opts.Backend {
	case "local":
		return storage.NewLocal(opts.Dir)
	case "s3":
		return storage.NewS3(opts.Bucket, opts.Prefix, opts.Region)
	default:
		return nil, fmt.Errorf("unsupported backend %q, must be 'local' or 's3'", opts.Backend)
	}
}

// validateUploadArgs validates the arguments provided to the upload command.
func validateUploadArgs(opts *RunOptionsUpload) error {
	if opts.InputFile == "" {
		return fmt.Errorf("the 'input' flag must be specified")
	}
	switch opts.Backend {
	case "local":
		if opts.Dir == "" {
			return fmt.Errorf("the 'dir' flag must be specified for the local backend")
		}
	case "s3":
		if opts.Bucket == "" {
			return fmt.Errorf("the 'bucket' flag must be specified for the s3 backend")
		}
	case "":
		return fmt.Errorf("the 'backend' flag must be specified")
	default:
		return fmt.Errorf("unsupported backend %q, must be 'local' or 's3'", opts.Backend)
	}
	return nil
}

// Initialize flags for the upload command.
func init() {
	UploadCmd.Flags().StringVarP(&uploadOptions.InputFile, "input", "i", "", "Path to a structured report produced by the scan command.")
	UploadCmd.Flags().StringVar(&uploadOptions.Backend, "backend", "", "Storage backend to upload to (local, s3).")
	UploadCmd.Flags().StringVar(&uploadOptions.Bucket, "bucket", "", "S3 bucket name.")
	UploadCmd.Flags().StringVar(&uploadOptions.Prefix, "prefix", "", "Key prefix inside the bucket.")
	UploadCmd.Flags().StringVar(&uploadOptions.Region, "region", "", "AWS region overriding the environment configuration.")
	UploadCmd.Flags().StringVar(&uploadOptions.Dir, "dir", "", "Destination directory for the local backend.")
	UploadCmd.Flags().BoolP("help", "h", false, "Show help for the upload command.")
}

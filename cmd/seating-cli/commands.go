package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/contest-seating-api/internal/models"
	"github.com/noah-isme/contest-seating-api/internal/seating"
	"github.com/noah-isme/contest-seating-api/internal/service"
	"github.com/noah-isme/contest-seating-api/pkg/config"
	"github.com/noah-isme/contest-seating-api/pkg/export"
	"github.com/noah-isme/contest-seating-api/pkg/logger"
)

const csvSheetColumn = "Room"

func rootCmd(out io.Writer) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Offline contest seat allocation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	newLogger := func() *zap.Logger {
		logr, err := logger.New(&config.Config{
			Env: config.EnvDevelopment,
			Log: config.LogConfig{Level: logLevel, Format: "console"},
		})
		if err != nil {
			return zap.NewNop()
		}
		return logr
	}

	cmd.AddCommand(allocateCmd(newLogger), layoutCmd(), tokenCmd(), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, version)
		},
	})
	return cmd
}

type allocateOptions struct {
	studentsPath   string
	roomsPath      string
	outPath        string
	format         string
	allowShortfall bool
}

func allocateCmd(newLogger func() *zap.Logger) *cobra.Command {
	var opts allocateOptions
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Allocate students to rooms and write the seating export",
		RunE: func(cmd *cobra.Command, args []string) error {
			logr := newLogger()
			defer logr.Sync() //nolint:errcheck
			return runAllocate(cmd.OutOrStdout(), opts, logr)
		},
	}
	cmd.Flags().StringVar(&opts.studentsPath, "students", "", "Student table (csv or xlsx) with name, cycle, school and teacher columns")
	cmd.Flags().StringVar(&opts.roomsPath, "rooms", "", "Room layout file (yaml); the default room set is used when omitted")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "Output file; the format follows its extension")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: xlsx, csv or pdf")
	cmd.Flags().BoolVar(&opts.allowShortfall, "allow-shortfall", false, "Run even when students outnumber the declared seats")
	_ = cmd.MarkFlagRequired("students")
	return cmd
}

func runAllocate(out io.Writer, opts allocateOptions, logr *zap.Logger) error {
	students, err := loadStudentFile(opts.studentsPath)
	if err != nil {
		return err
	}
	rooms, err := loadRoomsOrDefault(opts.roomsPath)
	if err != nil {
		return err
	}
	if len(students) == 0 {
		return fmt.Errorf("no students found in %s", opts.studentsPath)
	}
	if len(rooms) == 0 {
		return fmt.Errorf("no rooms configured")
	}

	declared := 0
	for _, room := range rooms {
		declared += room.Seats
	}
	if len(students) > declared && !opts.allowShortfall {
		return fmt.Errorf("%d students exceed %d declared seats; rerun with --allow-shortfall", len(students), declared)
	}

	start := time.Now()
	outcome := seating.Allocate(students, rooms)
	logr.Info("allocation finished",
		zap.Int("placed", outcome.PlacedCount),
		zap.Int("unplaced", outcome.UnplacedCount),
		zap.Duration("duration", time.Since(start)),
	)
	for _, name := range outcome.ShortRooms {
		logr.Warn("room grid holds fewer seats than declared", zap.String("room", name))
	}
	if outcome.UnknownCycle > 0 {
		logr.Warn("students with unknown cycle were not placed", zap.Int("count", outcome.UnknownCycle))
	}

	printOutcome(out, outcome)

	if opts.outPath == "" {
		return nil
	}
	format, err := resolveFormat(opts.format, opts.outPath)
	if err != nil {
		return err
	}
	data, err := renderSeating(seating.Workbook(seating.GroupByRoom(outcome.Placements)), format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.outPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.outPath, err)
	}
	fmt.Fprintf(out, "wrote %s\n", opts.outPath)
	return nil
}

func printOutcome(out io.Writer, outcome seating.Outcome) {
	fmt.Fprintf(out, "placed: %d\nunplaced: %d\nusable seats: %d\n", outcome.PlacedCount, outcome.UnplacedCount, outcome.UsableSeats)
	for _, phase := range []seating.Phase{seating.PhaseStrict, seating.PhaseLateral, seating.PhaseFallback} {
		fmt.Fprintf(out, "  %s: %d\n", phase, outcome.PhaseCounts[phase])
	}
	for _, group := range seating.GroupByRoom(outcome.Placements) {
		fmt.Fprintf(out, "%s: %d students\n", group.Room, len(group.Placements))
	}
}

func resolveFormat(flag, path string) (models.ExportFormat, error) {
	format := strings.ToLower(strings.TrimSpace(flag))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch models.ExportFormat(format) {
	case models.ExportFormatXLSX, models.ExportFormatCSV, models.ExportFormatPDF:
		return models.ExportFormat(format), nil
	default:
		return "", fmt.Errorf("unsupported output format %q", format)
	}
}

func renderSeating(book export.Workbook, format models.ExportFormat) ([]byte, error) {
	switch format {
	case models.ExportFormatXLSX:
		return export.NewXLSXExporter().Render(book)
	case models.ExportFormatCSV:
		return export.NewCSVExporter().RenderWorkbook(book, csvSheetColumn)
	case models.ExportFormatPDF:
		return export.NewPDFExporter().RenderWorkbook(book)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

func layoutCmd() *cobra.Command {
	var roomsPath string
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the serpentine seat order of each room",
		RunE: func(cmd *cobra.Command, args []string) error {
			rooms, err := loadRoomsOrDefault(roomsPath)
			if err != nil {
				return err
			}
			printLayouts(cmd.OutOrStdout(), rooms)
			return nil
		},
	}
	cmd.Flags().StringVar(&roomsPath, "rooms", "", "Room layout file (yaml); the default room set is used when omitted")
	return cmd
}

// printLayouts draws each room as a grid of seat numbers; dots mark cells past the seat count.
func printLayouts(out io.Writer, rooms []seating.Room) {
	ordered := make([]seating.Room, len(rooms))
	copy(ordered, rooms)
	sortRoomsByName(ordered)
	for _, room := range ordered {
		rows, cols := seating.Dimensions(room)
		grid := make([][]int, rows)
		for i := range grid {
			grid[i] = make([]int, cols)
		}
		positions := seating.SeatPositions(room)
		for i, pos := range positions {
			grid[pos.Row-1][pos.Col-1] = i + 1
		}
		fmt.Fprintf(out, "%s (%d seats, %dx%d)\n", room.Name, room.Seats, rows, cols)
		if len(positions) < room.Seats {
			fmt.Fprintf(out, "  warning: only %d of %d seats fit the grid\n", len(positions), room.Seats)
		}
		for _, row := range grid {
			var b strings.Builder
			for _, seat := range row {
				if seat == 0 {
					b.WriteString("   .")
					continue
				}
				fmt.Fprintf(&b, "%4d", seat)
			}
			fmt.Fprintln(out, b.String())
		}
	}
}

func tokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin access token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			userRole := models.UserRole(strings.ToUpper(role))
			if !userRole.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			verifier := service.NewTokenVerifier(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
			token, expiresAt, err := verifier.Issue(userID, email, "", userRole, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "operator", "User ID carried by the token")
	cmd.Flags().StringVar(&email, "email", "", "Email carried by the token")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "ADMIN or SUPERADMIN")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	return cmd
}

package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Generating %d frames (%dx%d, %d fps) to %s":  "%d フレームを生成中 (%dx%d, %d fps): %s",
		"Output saved to %s (%d frames, %d bytes)":    "出力を %s に保存しました (%d フレーム, %d バイト)",
		"Interrupted, finishing output...":            "中断されました。出力を確定しています...",
		"Using ffmpeg at %s":                          "ffmpeg を使用します: %s",
		"Summary written to %s":                       "サマリーを %s に書き出しました",
		"Debug output enabled: %s":                    "デバッグ出力が有効です: %s",
		"Probing %s":                                  "%s を解析中",

		// Encode session (debug)
		"Configured %s %dx%d@%d fps, gop %d, container %s": "%s %dx%d@%d fps, GOP %d, コンテナ %s を設定しました",
		"Encoder opened, %s header written":                "エンコーダを開き、%s ヘッダーを書き込みました",
		"Flushing encoder":                                 "エンコーダをフラッシュ中",
		"Finalized: %d frames, %d packets, %d bytes":       "確定: %d フレーム, %d パケット, %d バイト",

		// Render stage (debug)
		"Rendered frame %q at %dx%d": "フレーム %q を %dx%d で描画しました",

		// Warnings
		"Interrupted after %d frames, output finalized": "%d フレームで中断しました。出力は確定済みです",
		"Failed to save debug output: %s":               "デバッグ出力の保存に失敗しました: %s",

		// Errors
		"Failed to set up encoder: %s":          "エンコーダの準備に失敗しました: %s",
		"Stream ended early after %d frames: %s": "%d フレームでストリームが途中終了しました: %s",
		"Failed to write summary: %s":           "サマリーの書き込みに失敗しました: %s",
		"Invalid configuration: %s":             "設定が不正です: %s",
	})
}

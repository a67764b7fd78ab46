// Package main provides localization for the tickclip CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":            "出力先",
		"Video and Quality": "動画と品質",
		"Overlay":           "オーバーレイ",
		"Debug":             "デバッグ",
		"Logging":           "ログ",

		// Commands
		"Generate a timestamp test video as MPEG-TS":            "タイムスタンプ入りのテスト動画をMPEG-TSで生成",
		"Render the wall clock into an H.264 transport stream":  "壁時計の時刻をH.264トランスポートストリームに描画",
		"Inspect a generated transport stream":                  "生成したトランスポートストリームを検査",
		"Show version information":                              "バージョン情報を表示",
		"tickclip version %s":                                   "tickclip バージョン %s",
		"FILE argument is required":                             "FILE引数が必要です",
		"Fail when the file holds more frames than `N` or timestamps do not increase": "フレーム数が `N` を超えるかタイムスタンプが増加しない場合に失敗",

		// Output flags
		"Load configuration from YAML `FILE`":                "YAML設定ファイル `FILE` を読み込む",
		"Output file path (default: %s)":                     "出力ファイルパス（デフォルト: %s）",
		"Output execution summary to file (Markdown format)": "実行サマリーをファイルに出力（Markdown形式）",

		// Video flags
		"Output video width (default: %d)":                     "出力動画の幅（デフォルト: %d）",
		"Output video height (default: %d)":                    "出力動画の高さ（デフォルト: %d）",
		"Frames per second (default: %d)":                      "フレームレート（デフォルト: %d）",
		"Number of frames to generate (default: %d)":           "生成するフレーム数（デフォルト: %d）",
		"Keyframe interval in frames (default: one second)":    "キーフレーム間隔（フレーム数、デフォルト: 1秒）",
		"Video CRF value (0-51, lower is better, default: %d)": "動画のCRF値（0-51、低いほど高品質、デフォルト: %d）",
		"Encoder speed preset (default: %s)":                   "エンコーダ速度プリセット（デフォルト: %s）",
		"Target bitrate in kbps (0 = constant quality)":        "目標ビットレート（kbps、0 = 品質固定）",
		"Path to ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)": "ffmpeg実行ファイルのパス（未指定時はFFMPEG_PATH環境変数、次にPATH）",
		"Exit with an error when encoding stops early":         "エンコードが途中で止まった場合にエラー終了",

		// Overlay flags
		"Font size in points (default: %.0f)":           "フォントサイズ（ポイント、デフォルト: %.0f）",
		"TrueType font `FILE` (default: Go Bold)":       "TrueTypeフォント `FILE`（デフォルト: Go Bold）",
		"Text baseline x position (default: %d)":        "テキストのベースラインX座標（デフォルト: %d）",
		"Text baseline y position (default: %d)":        "テキストのベースラインY座標（デフォルト: %d）",
		"Background color (hex, e.g., #000000)":         "背景色（16進数、例: #000000）",
		"Text color (hex, e.g., #ffffff)":               "文字色（16進数、例: #ffffff）",
		"Nanoseconds per displayed tick (default: %d)":  "表示1単位あたりのナノ秒数（デフォルト: %d）",

		// Debug flags
		"Enable debug output":                      "デバッグ出力を有効化",
		"Directory for debug output (default: %s)": "デバッグ出力のディレクトリ（デフォルト: %s）",
		"Save every Nth frame as PNG (default: %d)": "Nフレームごとに PNG を保存（デフォルト: %d）",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Probe output
		"Streams: %d":                "ストリーム数: %d",
		"Codec: %s":                  "コーデック: %s",
		"Resolution: %dx%d":          "解像度: %dx%d",
		"Frames: %d (%d keyframes)":  "フレーム数: %d（キーフレーム %d）",
		"PTS: %d to %d (%.3f s)":     "PTS: %d 〜 %d（%.3f 秒）",
		"Decode errors: %d":          "デコードエラー: %d",
		"Decoded frames: %d":         "デコードしたフレーム数: %d",
		"Also decode the file with ffmpeg and count the frames": "ffmpeg でデコードしてフレーム数も確認",

		// Summary content
		"Generation Summary": "生成サマリー",
		"Generated":          "生成日時",
		"Version":            "バージョン",
		"Settings":           "設定",
		"Stream":             "ストリーム",
		"Timestamps":         "タイムスタンプ",
		"Item":               "項目",
		"Value":              "値",
		"File":               "ファイル",
		"Container":          "コンテナ",
		"File Size":          "ファイルサイズ",
		"Codec":              "コーデック",
		"Resolution":         "解像度",
		"Frame Rate":         "フレームレート",
		"GOP":                "GOP",
		"frames":             "フレーム",
		"Rate Control":       "レート制御",
		"Preset":             "プリセット",
		"Frame Bound":        "フレーム上限",
		"Frames Submitted":   "投入フレーム数",
		"Packets Written":    "書き込みパケット数",
		"Keyframes":          "キーフレーム数",
		"Duration":           "再生時間",
		"Status":             "状態",
		"Complete":           "完了",
		"Truncated":          "途中終了",
		"Interrupted":        "中断",
		"Error":              "エラー",
		"First Frame":        "最初のフレーム",
		"Last Frame":         "最後のフレーム",
		"Wall Clock Span":    "実時間の経過",
	})
}

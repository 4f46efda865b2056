package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// SampleName is the dataset Init writes.
const SampleName = "sample.csv"

const sampleCSV = `カテゴリ,観点,タスク,開始日,終了日,担当者,進行状況,優先度,中間チェック,タスクNo,後続タスクNo
マイルストーン,キックオフ,,2025/08/18,2025/08/18,,完了済み,,,M1,1
マイルストーン,リリース,,2025/10/31,2025/10/31,,開始前,,,M2,
PMO,会議体,定例会,2025/08/18,2025/10/31,佐藤,進行中,中,,1,
PMO,会議体,,2025/08/18,2025/08/22,佐藤,完了済み,,,2,
構築-基盤環境,設計,基本設計,2025/08/25,2025/09/05,鈴木,進行中,高,2025/09/01,3,4;5
構築-基盤環境,設計,詳細設計,2025/09/08,2025/09/19,鈴木,開始前,,,4,6
構築-基盤環境,構築,,2025/09/08,2025/09/26,田中,開始前,,,5,6
構築-基盤環境,テスト,結合テスト,2025/09/29,2025/10/17,田中,開始前,緊急,2025/10/08,6,M2
`

func (w *Workspace) ensureSample() error {
	path := filepath.Join(w.CSVDir(), SampleName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := atomicWriteFile(path, []byte(sampleCSV), 0o644); err != nil {
			return err
		}
	}
	samples := filepath.Join(w.CSVDir(), samplesFile)
	if _, err := os.Stat(samples); errors.Is(err, fs.ErrNotExist) {
		return writeNameList(samples, []string{SampleName})
	}
	return nil
}

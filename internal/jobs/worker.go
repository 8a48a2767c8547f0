// Package jobs は提案キャッシュ更新などの非同期ジョブを管理します。
//
// ジョブは Asynq で実行し、状態は Redis に保存します。
// 定期実行は asynq.Scheduler に登録します。
package jobs

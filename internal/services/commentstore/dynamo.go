package commentstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/podhaven/podhaven/internal/config"
	"github.com/podhaven/podhaven/internal/logging"
)

// commentItem is the wire shape of a comment. The partition key is the
// numeric episode id, the sort key is the comment uuid. Timestamps are
// stored as RFC 3339 strings.
type commentItem struct {
	EpisodeId  int64  `dynamodbav:"episode_id"`
	CommentId  string `dynamodbav:"comment_id"`
	PodcastId  int64  `dynamodbav:"podcast_id"`
	AuthorId   string `dynamodbav:"author_id"`
	AuthorName string `dynamodbav:"author_name"`
	Text       string `dynamodbav:"text"`
	PostedAt   string `dynamodbav:"posted_at"`
}

func mapCommentItem(c Comment) commentItem {
	return commentItem{
		EpisodeId:  c.EpisodeId,
		CommentId:  c.CommentId,
		PodcastId:  c.PodcastId,
		AuthorId:   c.AuthorId,
		AuthorName: c.AuthorName,
		Text:       c.Text,
		PostedAt:   c.PostedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (i commentItem) Map() Comment {
	postedAt, err := time.Parse(time.RFC3339Nano, i.PostedAt)
	if err != nil {
		// a malformed timestamp only costs the ordering, not the comment
		logging.Logger.Warnf("comment %s has malformed timestamp %q", i.CommentId, i.PostedAt)
	}

	return Comment{
		EpisodeId:  i.EpisodeId,
		CommentId:  i.CommentId,
		PodcastId:  i.PodcastId,
		AuthorId:   i.AuthorId,
		AuthorName: i.AuthorName,
		Text:       i.Text,
		PostedAt:   postedAt,
	}
}

type dynamoService struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoService(ctx context.Context, c config.CommentStoreDynamoConfig) (Service, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(c.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return &dynamoService{
		client: dynamodb.NewFromConfig(awsCfg),
		table:  c.Table,
	}, nil
}

func (d *dynamoService) List(ctx context.Context, episodeId int64) ([]Comment, error) {
	var result []Comment

	paginator := dynamodb.NewQueryPaginator(d.client, &dynamodb.QueryInput{
		TableName:              aws.String(d.table),
		KeyConditionExpression: aws.String("episode_id = :episodeId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":episodeId": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", episodeId)},
		},
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("querying comments for episode %d: %w", episodeId, err)
		}

		var items []commentItem
		err = attributevalue.UnmarshalListOfMaps(page.Items, &items)
		if err != nil {
			return nil, fmt.Errorf("unmarshalling comments for episode %d: %w", episodeId, err)
		}

		for _, item := range items {
			result = append(result, item.Map())
		}
	}

	// the sort key is a uuid, ordering by time has to happen here
	sort.Slice(result, func(i, j int) bool {
		return result[i].PostedAt.After(result[j].PostedAt)
	})

	return result, nil
}

func (d *dynamoService) Get(ctx context.Context, episodeId int64, commentId string) (*Comment, error) {
	output, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key: map[string]types.AttributeValue{
			"episode_id": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", episodeId)},
			"comment_id": &types.AttributeValueMemberS{Value: commentId},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting comment %s: %w", commentId, err)
	}

	if output.Item == nil {
		return nil, nil
	}

	var item commentItem
	err = attributevalue.UnmarshalMap(output.Item, &item)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling comment %s: %w", commentId, err)
	}

	comment := item.Map()
	return &comment, nil
}

func (d *dynamoService) Put(ctx context.Context, comment Comment) error {
	item, err := attributevalue.MarshalMap(mapCommentItem(comment))
	if err != nil {
		return fmt.Errorf("marshalling comment %s: %w", comment.CommentId, err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting comment %s: %w", comment.CommentId, err)
	}

	return nil
}

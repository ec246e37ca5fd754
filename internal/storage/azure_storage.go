package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

const azureBlobHostSuffix = ".blob.core.windows.net"

// AzureImageFetcher downloads images from an Azure Blob Storage account.
// Image URLs take the form https://<account>.blob.core.windows.net/<container>/<blob>.
type AzureImageFetcher struct {
	client   *azblob.Client
	account  string
	maxBytes int64
}

// NewAzureImageFetcher authenticates with a shared key
func NewAzureImageFetcher(accountName, accountKey string, maxBytes int64) (*AzureImageFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s%s", accountName, azureBlobHostSuffix),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	return &AzureImageFetcher{client: client, account: strings.ToLower(accountName), maxBytes: maxBytes}, nil
}

func (s *AzureImageFetcher) FetchImage(ctx context.Context, blobURL string) (*DecodedImage, error) {
	containerName, blobName, err := parseBlobURL(blobURL, s.account)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("blob %s/%s: %w", containerName, blobName, ErrImageNotFound)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.ContentLength != nil && *resp.ContentLength > s.maxBytes {
		return nil, fmt.Errorf("%w: content length %d > %d", ErrImageTooLarge, *resp.ContentLength, s.maxBytes)
	}
	return decodeLimited(resp.Body, s.maxBytes)
}

// parseBlobURL splits a blob URL into container and blob name.
// When account is non-empty the host must belong to it.
func parseBlobURL(blobURL, account string) (string, string, error) {
	u, err := url.Parse(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}

	host := strings.ToLower(u.Hostname())
	if !strings.HasSuffix(host, azureBlobHostSuffix) {
		return "", "", fmt.Errorf("invalid blob URL: host %q is not a blob endpoint", u.Host)
	}
	if account != "" && host != account+azureBlobHostSuffix {
		return "", "", fmt.Errorf("invalid blob URL: host %q does not belong to account %q", u.Host, account)
	}

	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid blob URL: path must be /<container>/<blob>, got %q", u.Path)
	}
	return parts[0], parts[1], nil
}
